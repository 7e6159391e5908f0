package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katalis-id/psikotes-backend/internal/response"
	"github.com/katalis-id/psikotes-backend/internal/service"
)

// failFromError maps service errors onto the typed response codes. Anything
// unrecognized falls through to a 500.
func failFromError(c *gin.Context, err error) {
	var formatErr *service.AnswerFormatError
	if errors.As(err, &formatErr) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidAnswerFormat,
			map[string]string{"detail": formatErr.Detail})
		return
	}

	switch {
	case errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrTestNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrAnswerNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbiddenAttempt):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAttemptNotActive):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidStatusTransition)
	case errors.Is(err, service.ErrInvalidProgress):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidProgress)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrTestNotInSession):
		response.Fail(c, http.StatusBadRequest, response.ErrTestNotInSession)
	case errors.Is(err, service.ErrResultNotReady):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotReady)
	case errors.Is(err, service.ErrDataIntegrity):
		response.Fail(c, http.StatusInternalServerError, response.ErrDataIntegrity)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
