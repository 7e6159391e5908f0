package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/katalis-id/psikotes-backend/internal/middleware"
	"github.com/katalis-id/psikotes-backend/internal/model"
	"github.com/katalis-id/psikotes-backend/internal/response"
	"github.com/katalis-id/psikotes-backend/internal/service"
	"github.com/katalis-id/psikotes-backend/internal/validator"
)

// AnswerHandler handles answer submission and retrieval.
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// SubmitAnswer godoc
// POST /api/v1/attempts/:attempt_id/answers
// Upserts an answer. Non-draft submissions are validated and graded.
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.answerService.Submit(c.Request.Context(), claims.UserID, attemptID, req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// AutoSaveAnswer godoc
// POST /api/v1/attempts/:attempt_id/answers/autosave
// Queues a draft for asynchronous persistence. Lenient: malformed payloads
// are accepted so in-progress work is never lost.
func (h *AnswerHandler) AutoSaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.answerService.EnqueueDraft(c.Request.Context(), claims.UserID, attemptID, req); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"queued": true})
}

// ListAnswers godoc
// GET /api/v1/attempts/:attempt_id/answers
// Returns the attempt's answers in question order.
func (h *AnswerHandler) ListAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	answers, err := h.answerService.List(c.Request.Context(), attemptID, claims.UserID, false)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}

// GetAnswer godoc
// GET /api/v1/attempts/:attempt_id/answers/:question_id
func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	answer, err := h.answerService.Get(c.Request.Context(), attemptID, questionID, claims.UserID, false)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}
