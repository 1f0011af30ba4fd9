package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
)

type gameUseCase interface {
	Start(ctx context.Context, callerID, opponentID string) (*entity.Game, error)
	MakeMove(ctx context.Context, callerID, gameID string, position int) (*entity.Game, error)
	History(ctx context.Context, callerID string) ([]*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	RequestRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error)
	AcceptRematch(ctx context.Context, callerID, gameID string) (*entity.Game, error)
	RematchStatus(ctx context.Context, gameID string) (entity.Rematch, error)
}

type GameHandler interface {
	Start(c *gin.Context)
	MakeMove(c *gin.Context)
	History(c *gin.Context)
	GetGame(c *gin.Context)
	RequestRematch(c *gin.Context)
	AcceptRematch(c *gin.Context)
	RematchStatus(c *gin.Context)
}

type startRequest struct {
	OpponentID string `json:"opponentId"`
}

type moveRequest struct {
	Position *int `json:"position"`
}

type gameMessageResponse struct {
	Message string       `json:"message"`
	Game    *entity.Game `json:"game"`
}

type rematchStatusResponse struct {
	RematchRequestedBy string `json:"rematchRequestedBy"`
	RematchAccepted    bool   `json:"rematchAccepted"`
}

type gameHandler struct {
	logger *slog.Logger
	game   gameUseCase
}

func NewGameHandler(logger *slog.Logger, game gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "game handler"),
		game:   game,
	}
}

func (that *gameHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, that.logger, apperror.ErrMalformedBody)
		return
	}

	game, err := that.game.Start(c.Request.Context(), callerID(c), req.OpponentID)
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (that *gameHandler) MakeMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, that.logger, apperror.ErrMalformedBody)
		return
	}

	if req.Position == nil {
		writeError(c, that.logger, apperror.ErrInvalidCell)
		return
	}

	game, err := that.game.MakeMove(c.Request.Context(), callerID(c), c.Param("gameId"), *req.Position)
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (that *gameHandler) History(c *gin.Context) {
	games, err := that.game.History(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

func (that *gameHandler) GetGame(c *gin.Context) {
	game, err := that.game.GetGame(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (that *gameHandler) RequestRematch(c *gin.Context) {
	game, err := that.game.RequestRematch(c.Request.Context(), callerID(c), c.Param("gameId"))
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, gameMessageResponse{Message: "Rematch requested", Game: game})
}

func (that *gameHandler) AcceptRematch(c *gin.Context) {
	game, err := that.game.AcceptRematch(c.Request.Context(), callerID(c), c.Param("gameId"))
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, gameMessageResponse{Message: "Rematch accepted. Game has restarted.", Game: game})
}

func (that *gameHandler) RematchStatus(c *gin.Context) {
	rematch, err := that.game.RematchStatus(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		writeError(c, that.logger, err)
		return
	}

	c.JSON(http.StatusOK, rematchStatusResponse{
		RematchRequestedBy: rematch.RequestedBy,
		RematchAccepted:    rematch.Accepted,
	})
}
