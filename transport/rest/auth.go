package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
)

type userUseCase interface {
	Register(ctx context.Context, username, password string) (*entity.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type authHandler struct {
	logger *slog.Logger
	user   userUseCase
}

func NewAuthHandler(logger *slog.Logger, user userUseCase) AuthHandler {
	return &authHandler{
		logger: logger.With("component", "auth handler"),
		user:   user,
	}
}

func (that *authHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, that.logger, apperror.ErrMalformedBody)
		return
	}

	user, token, err := that.user.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{User: user, Token: token})
}

func (that *authHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, that.logger, apperror.ErrMalformedBody)
		return
	}

	token, err := that.user.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}
