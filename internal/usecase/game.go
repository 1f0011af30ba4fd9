package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/tictactoe"
)

type GameUseCase interface {
	Start(ctx context.Context, callerID, opponentID string) (*entity.Game, error)
	MakeMove(ctx context.Context, callerID, gameID string, position int) (*entity.Game, error)
	History(ctx context.Context, callerID string) ([]*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)

	RequestRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error)
	AcceptRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error)
	RematchStatus(ctx context.Context, gameID string) (entity.Rematch, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Game, error)
}

type gameUseCase struct {
	logger   *slog.Logger
	gameRepo gameRepo

	now   func() time.Time
	newID func() string
}

func NewGameUseCase(logger *slog.Logger, gameRepo gameRepo) GameUseCase {
	return &gameUseCase{
		logger:   logger.With("component", "game"),
		gameRepo: gameRepo,
		now:      time.Now,
		newID:    pkg.GenerateID,
	}
}

func (that *gameUseCase) Start(ctx context.Context, callerID, opponentID string) (*entity.Game, error) {
	if callerID == "" || opponentID == "" {
		return nil, apperror.ErrMissingParticipant
	}

	game := entity.NewGame(that.newID(), callerID, opponentID, that.now().UTC())
	if err := that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game started", "gameID", game.ID, "player1", game.Player1, "player2", game.Player2)

	return game, nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, callerID, gameID string, position int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "gameID", gameID, "callerID", callerID)

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.MakeMove(game, callerID, position); err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Debug("move applied", "position", position, "moves", len(game.Moves))

	if game.IsCompleted() {
		log.Info("game completed", "winner", game.Winner)
	}

	return game, nil
}

func (that *gameUseCase) History(ctx context.Context, callerID string) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListByParticipant(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

func (that *gameUseCase) RequestRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.RequestRematch(game, callerID); err != nil {
		return nil, fmt.Errorf("failed to request rematch: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("rematch requested", "gameID", game.ID, "requestedBy", callerID)

	return game, nil
}

func (that *gameUseCase) AcceptRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.AcceptRematch(game, callerID); err != nil {
		return nil, fmt.Errorf("failed to accept rematch: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("rematch accepted, game restarted", "gameID", game.ID, "acceptedBy", callerID)

	return game, nil
}

func (that *gameUseCase) RematchStatus(ctx context.Context, gameID string) (entity.Rematch, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return entity.Rematch{}, err
	}

	return game.Rematch, nil
}

func (that *gameUseCase) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) updateGame(ctx context.Context, game *entity.Game) error {
	game.UpdatedAt = that.now().UTC()

	if err := that.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
