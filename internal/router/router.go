package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katalis-id/psikotes-backend/internal/config"
	"github.com/katalis-id/psikotes-backend/internal/handler"
	"github.com/katalis-id/psikotes-backend/internal/middleware"
	"github.com/katalis-id/psikotes-backend/internal/response"
	"github.com/katalis-id/psikotes-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Attempt *handler.AttemptHandler
	Answer  *handler.AnswerHandler
	Admin   *handler.AdminHandler
	Monitor *handler.MonitorHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	// Login endpoints are rate-limited per IP to blunt credential stuffing.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.ParticipantLogin)
		auth.POST("/admin/login", authLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/me", middleware.RequireParticipantJWT(authService), handlers.Auth.GetParticipantProfile)
		auth.POST("/logout", middleware.RequireParticipantJWT(authService), handlers.Auth.ParticipantLogout)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Participant Group (JWT + Single Device) ────────────────────
	participantAPI := router.Group("/api/v1")
	participantAPI.Use(
		middleware.RequireParticipantJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		participantAPI.POST("/attempts", handlers.Attempt.StartAttempt)
		participantAPI.GET("/attempts", handlers.Attempt.ListAttempts)
		participantAPI.GET("/attempts/:attempt_id", handlers.Attempt.GetAttempt)
		participantAPI.PATCH("/attempts/:attempt_id", handlers.Attempt.UpdateAttempt)
		participantAPI.POST("/attempts/:attempt_id/finish", handlers.Attempt.FinishAttempt)
		participantAPI.GET("/attempts/:attempt_id/progress", handlers.Attempt.GetProgress)
		participantAPI.GET("/attempts/:attempt_id/result", handlers.Attempt.GetResult)

		participantAPI.POST("/attempts/:attempt_id/answers", handlers.Answer.SubmitAnswer)
		participantAPI.POST("/attempts/:attempt_id/answers/autosave", handlers.Answer.AutoSaveAnswer)
		participantAPI.GET("/attempts/:attempt_id/answers", handlers.Answer.ListAnswers)
		participantAPI.GET("/attempts/:attempt_id/answers/:question_id", handlers.Answer.GetAnswer)
	}

	// ─── 3. WebSocket Group (Participant WS Auth) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireParticipantWSAuth(authService))
	{
		ws.GET("/attempts/:attempt_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/users/:user_id/attempts", handlers.Admin.ListUserAttempts)
		adminAPI.GET("/sessions/:session_id/attempts", handlers.Admin.ListSessionAttempts)
		adminAPI.GET("/sessions/:session_id/monitor", handlers.Monitor.MonitorSessionSSE)
		adminAPI.GET("/attempts/:attempt_id", handlers.Admin.GetAttemptAdmin)
		adminAPI.POST("/attempts/:attempt_id/recalculate", handlers.Admin.RecalculateResult)
		adminAPI.GET("/stats", handlers.Admin.ListPerformanceStats)
		adminAPI.POST("/scheduler/run", handlers.Admin.RunScheduler)
		adminAPI.DELETE("/participants/:user_id/session", handlers.Admin.ResetParticipantSession)
	}

	return router
}
