package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/gymflow-api/internal/middleware"
	"github.com/sjperalta/gymflow-api/internal/services"
)

// respondError writes the HTTP response for a service error.
// Not found maps to 404 and rule violations to 422; anything else is a 500
// that is attached to the gin context and reported to Sentry.
func respondError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	var business *services.BusinessError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &business):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": business.Message, "code": business.Code})
	default:
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// actorFrom builds the acting user from the authenticated request
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:  middleware.GetUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}

// uintParam parses a positive numeric path parameter
func uintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s inválido", name)
	}
	return uint(id), nil
}

// parseDate accepts a calendar date (YYYY-MM-DD, midnight UTC) or a full RFC3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func totalPages(total int64, perPage int) int64 {
	if perPage <= 0 {
		return 1
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}
