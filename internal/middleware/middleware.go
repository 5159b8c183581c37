package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"backstage/internal/logger"
	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// Ctx key and helpers for the authenticated actor.
// Using unexported type to avoid collisions.

type ctxKey string

const actorKey ctxKey = "actor"

func ContextWithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	v := ctx.Value(actorKey)
	if v == nil {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// CORS handles cross-origin requests.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor-Id, X-Actor-Role")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger emits one structured line per completed request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		actor, hasActor := ActorFromContext(c.Request.Context())

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if hasActor {
			logFields = append(logFields, "actor_id", actor.ID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			logger.Error("Request completed with error", logFields...)
		} else {
			logger.Debug("Request completed", logFields...)
		}
	}
}

// Recovery converts panics into a 500 with full context in the log.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// Actor resolves the acting identity from the X-Actor-Id and X-Actor-Role
// headers set by the upstream gateway. Identity verification happens there;
// this layer only carries the result into the request context. Requests
// without an actor id are rejected.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader("X-Actor-Id")
		if rawID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing actor identity"})
			return
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid actor identity"})
			return
		}

		role := c.GetHeader("X-Actor-Role")
		switch role {
		case "", models.RoleAdmin, models.RoleSystem:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown actor role"})
			return
		}

		actor := models.Actor{ID: id, Role: role}
		c.Set("actor_id", id)
		c.Request = c.Request.WithContext(ContextWithActor(c.Request.Context(), actor))

		c.Next()
	}
}
