package handlers

import (
	"errors"
	"net/http"

	"fedclassroom/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Service unavailable errors. Checked first since a broken stored
	// model also wraps its validation error.
	case errors.Is(err, domain.ErrGlobalModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	// Not found errors
	case errors.Is(err, domain.ErrGlobalModelNotFound),
		errors.Is(err, domain.ErrUpdateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrModelShapeMismatch),
		errors.Is(err, domain.ErrEmptyModelState),
		errors.Is(err, domain.ErrInvalidAccuracy),
		errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidAppName),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
