package rest

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type tokenResolver interface {
	Resolve(token string) (string, error)
}

// requireAuth - resolves the caller from the Authorization header and stores it in the context.
func requireAuth(log *slog.Logger, tokens tokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, err := tokens.Resolve(extractToken(c))
		if err != nil {
			writeError(c, log, err)
			return
		}

		c.Set(callerIDKey, callerID)
		c.Next()
	}
}

// extractToken accepts both "Bearer <token>" and a bare token.
func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))

	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}

	return header
}

func callerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

// requestLogger - logs every request once it has been served.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}
