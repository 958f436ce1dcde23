package handler

import (
	"log"
	"net/http"

	"saccosphere/internal/apperror"
	"saccosphere/internal/middleware"
	"saccosphere/internal/service"
	"saccosphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// actorFrom assembles the acting operator from what the auth middleware
// attached to the request context.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{
		Username: middleware.Username(c),
		Matrix:   middleware.Matrix(c),
	}
	if v, ok := c.Get(middleware.CtxUserID); ok {
		if s, ok := v.(string); ok {
			actor.UserID = s
		}
	}
	if v, ok := c.Get(middleware.CtxUserRole); ok {
		if s, ok := v.(string); ok {
			actor.Role = s
		}
	}
	return actor
}

// respondError maps a service error to its HTTP status and writes the
// standard envelope.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs, not the wire.
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

// listEnvelope is the shared shape of paginated list responses.
func listEnvelope(items any, total int64, page, limit int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
