package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/katalis-id/psikotes-backend/internal/repository"
	"github.com/katalis-id/psikotes-backend/internal/response"
	"github.com/katalis-id/psikotes-backend/internal/service"
)

// AdminHandler handles the administrative surface: session monitoring,
// result recalculation, performance stats, and operational triggers.
type AdminHandler struct {
	attemptService   *service.AttemptService
	resultService    *service.ResultService
	schedulerService *service.SchedulerService
	authService      *service.AuthService
	statsRepo        *repository.StatsRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	attemptService *service.AttemptService,
	resultService *service.ResultService,
	schedulerService *service.SchedulerService,
	authService *service.AuthService,
	statsRepo *repository.StatsRepository,
) *AdminHandler {
	return &AdminHandler{
		attemptService:   attemptService,
		resultService:    resultService,
		schedulerService: schedulerService,
		authService:      authService,
		statsRepo:        statsRepo,
	}
}

// ListSessionAttempts godoc
// GET /api/v1/admin/sessions/:session_id/attempts
// The per-session aggregate view: every attempt with its participant and,
// when calculated, its result summary.
func (h *AdminHandler) ListSessionAttempts(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rows, err := h.attemptService.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": rows})
}

// ListUserAttempts godoc
// GET /api/v1/admin/users/:user_id/attempts
// Lists every attempt a participant has made across tests and sessions.
func (h *AdminHandler) ListUserAttempts(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.attemptService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// GetAttemptAdmin godoc
// GET /api/v1/admin/attempts/:attempt_id
func (h *AdminHandler) GetAttemptAdmin(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, 0, true)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// RecalculateResult godoc
// POST /api/v1/admin/attempts/:attempt_id/recalculate
// Forces a recompute from the current answer rows, e.g. after fixing a
// question's scoring key.
func (h *AdminHandler) RecalculateResult(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.resultService.Calculate(c.Request.Context(), attemptID, true)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListPerformanceStats godoc
// GET /api/v1/admin/stats
// The current population-wide performance snapshot, ordered by rank.
func (h *AdminHandler) ListPerformanceStats(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	stats, total, err := h.statsRepo.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"stats": stats}, pagination)
}

// RunScheduler godoc
// POST /api/v1/admin/scheduler/run
// Manually triggers one scheduler pass and returns its report.
func (h *AdminHandler) RunScheduler(c *gin.Context) {
	report := h.schedulerService.RunAll(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// ResetParticipantSession godoc
// DELETE /api/v1/admin/participants/:user_id/session
// Clears a participant's single-device session so they can log in again.
func (h *AdminHandler) ResetParticipantSession(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetParticipantSession(c.Request.Context(), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
