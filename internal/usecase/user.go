package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/pkg"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

type UserUseCase interface {
	Register(ctx context.Context, username, password string) (*entity.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type tokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type userUseCase struct {
	logger *slog.Logger
	repo   userRepo
	hasher passwordHasher
	tokens tokenIssuer

	now func() time.Time
}

func NewUserUseCase(logger *slog.Logger, repo userRepo, hasher passwordHasher, tokens tokenIssuer) UserUseCase {
	return &userUseCase{
		logger: logger.With("component", "user"),
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register - creates an account and returns it with a fresh token.
func (that *userUseCase) Register(ctx context.Context, username, password string) (*entity.User, string, error) {
	if !usernamePattern.MatchString(username) {
		return nil, "", apperror.ErrInvalidUsername
	}

	if len(password) < minPasswordLength {
		return nil, "", apperror.ErrWeakPassword
	}

	hash, err := that.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &entity.User{
		ID:           pkg.GenerateID(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    that.now().UTC(),
	}

	if err = that.repo.Save(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to save user into storage: %w", err)
	}

	token, err := that.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	that.logger.Info("user registered", "userID", user.ID, "username", user.Username)

	return user, token, nil
}

// Login - exchanges valid credentials for a token. Unknown users and wrong passwords
// fail the same way.
func (that *userUseCase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := that.repo.FindByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		return "", apperror.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := that.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperror.ErrInvalidCredentials
	}

	token, err := that.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", err
	}

	return token, nil
}
