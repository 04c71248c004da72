package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/service/records"
)

var errInvalidBody = errors.New("invalid request body")

// statusFor maps the error taxonomy onto the status returned to the presentation layer.
func statusFor(err error) int {
	var (
		authErr       *apperrors.AuthError
		httpErr       *apperrors.HTTPError
		transportErr  *apperrors.TransportError
		validationErr *apperrors.ValidationError
	)

	switch {
	case errors.Is(err, errInvalidBody), errors.As(err, &validationErr),
		errors.Is(err, records.ErrUnknownSortField), errors.Is(err, records.ErrUnknownDirection):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, records.ErrNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, records.ErrNotEditable):
		return http.StatusMethodNotAllowed
	case errors.As(err, &authErr):
		if authErr.Kind == apperrors.NetworkFailure {
			return http.StatusBadGateway
		}
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &httpErr):
		switch httpErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusUnauthorized
		case http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
			return httpErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Warn(msg, zap.Error(err))
	}

	text := apperrors.Message(err)
	switch {
	case errors.Is(err, errInvalidBody):
		text = "The request body is not valid JSON."
	case errors.Is(err, records.ErrNotLoaded):
		text = "The record no longer exists."
	case errors.Is(err, records.ErrNotEditable):
		text = "These records cannot be edited."
	}
	c.JSON(status, gin.H{"error": text})
}
