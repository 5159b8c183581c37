package handlers

import (
	"net/http"

	"backstage/internal/cache"
	"backstage/internal/errors"
	"backstage/internal/middleware"
	"backstage/internal/models"
	"backstage/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// actor pulls the acting identity out of the request context. The Actor
// middleware guarantees it is present on every route that reaches a handler.
func actor(c *gin.Context) models.Actor {
	a, _ := middleware.ActorFromContext(c.Request.Context())
	return a
}

// writeError maps an engine error code onto an HTTP status and renders the
// standard error body. Unknown errors become a 500 without leaking internals.
func writeError(c *gin.Context, err error) {
	code := errors.CodeOf(err)

	var status int
	switch code {
	case errors.CodeIllegalTransition,
		errors.CodeDuplicateBooking,
		errors.CodeScheduleConflict,
		errors.CodeDuplicateReference:
		status = http.StatusConflict
	case errors.CodeInsufficientBalance:
		status = http.StatusPaymentRequired
	case errors.CodeNotAuthorized:
		status = http.StatusForbidden
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidArgument:
		status = http.StatusBadRequest
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  string(errors.CodeCommitFailed),
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  string(code),
	})
}
