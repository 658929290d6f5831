package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediahub/internal/catalog"
	"mediahub/internal/importer"
	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/service"
	"mediahub/internal/rating"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var catalogErr *catalog.Error
	switch {
	case errors.Is(err, library.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, library.ErrNotFound),
		errors.Is(err, service.ErrVersusNotFound),
		errors.Is(err, service.ErrImportNotFound),
		errors.Is(err, service.ErrUnknownList):
		return http.StatusNotFound
	case errors.Is(err, rating.ErrInsufficientItems):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rating.ErrSessionFinished), errors.Is(err, rating.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, rating.ErrInvalidWinner),
		errors.Is(err, service.ErrNotRatable),
		importer.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &catalogErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// storage details stay in the logs
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
