package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
)

const callerIDKey = "userID"

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor - HTTP status of an error by its kind.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.ErrInvalidInput, apperror.ErrInvalidState:
		return http.StatusBadRequest
	case apperror.ErrForbidden:
		return http.StatusForbidden
	case apperror.ErrNotFound:
		return http.StatusNotFound
	case apperror.ErrConflict:
		return http.StatusConflict
	case apperror.ErrAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError - responds with the mapped status. Internal failures are logged and hidden from the client.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, errorResponse{Error: "internal server error"})
		return
	}

	log.Debug("request rejected", "path", c.FullPath(), "status", status, "error", err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
