package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"urly/internal/registry"
)

// ValidationError is a client error answered with 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// ErrorHandler turns the last error attached to the context into a JSON
// response. Handlers attach storage failures with a user facing message as
// the error meta.
func ErrorHandler(c *gin.Context) {
	c.Next()

	last := c.Errors.Last()
	if last == nil || c.Writer.Written() {
		return
	}

	var validationErr *ValidationError
	var storageErr *registry.StorageError

	switch {
	case errors.As(last.Err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(last.Err, &storageErr):
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, last.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": metaMessage(last, "Storage error")})
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, last.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": metaMessage(last, "Internal server error")})
	}
}

func metaMessage(e *gin.Error, fallback string) string {
	if msg, ok := e.Meta.(string); ok && msg != "" {
		return msg
	}
	return fallback
}
