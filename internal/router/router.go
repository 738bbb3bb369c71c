package router

import (
	"net/http"
	"time"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/handler"
	"github.com/courseloom/courseloom-backend/internal/middleware"
	"github.com/courseloom/courseloom-backend/internal/response"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Quiz       *handler.QuizHandler
	Attempt    *handler.AttemptHandler
	Grading    *handler.GradingHandler
	Statistics *handler.StatisticsHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
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

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/quizzes/:quiz_id", handlers.Attempt.GetQuizPayload)
		studentAPI.POST("/quizzes/:quiz_id/attempts", handlers.Attempt.StartAttempt)
		studentAPI.GET("/attempts", handlers.Attempt.ListMyAttempts)
		studentAPI.GET("/attempts/:attempt_id", handlers.Attempt.GetAttempt)
		studentAPI.GET("/attempts/:attempt_id/state", handlers.Attempt.GetAttemptState)
		studentAPI.PUT("/attempts/:attempt_id/answers", handlers.Attempt.AutosaveAnswer)
		studentAPI.POST("/attempts/:attempt_id/submit", handlers.Attempt.SubmitAttempt)
		studentAPI.GET("/statistics", handlers.Statistics.GetMyStatistics)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/attempts/:attempt_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Educator Group (Educator JWT) ──────────────────────────────
	educatorAPI := router.Group("/api/v1/educator")
	educatorAPI.Use(middleware.RequireEducatorJWT(authService))
	{
		educatorAPI.GET("/courses/:course_id/quizzes", handlers.Quiz.ListQuizzes)
		educatorAPI.POST("/quizzes", handlers.Quiz.CreateQuiz)
		educatorAPI.GET("/quizzes/:quiz_id", handlers.Quiz.GetQuiz)
		educatorAPI.PUT("/quizzes/:quiz_id", handlers.Quiz.UpdateQuiz)
		educatorAPI.DELETE("/quizzes/:quiz_id", handlers.Quiz.DeleteQuiz)
		educatorAPI.POST("/quizzes/:quiz_id/publish", handlers.Quiz.PublishQuiz)
		educatorAPI.POST("/quizzes/:quiz_id/unpublish", handlers.Quiz.UnpublishQuiz)
		educatorAPI.GET("/quizzes/:quiz_id/attempts", handlers.Quiz.ListQuizAttempts)
		educatorAPI.GET("/quizzes/:quiz_id/statistics", handlers.Statistics.GetQuizStatistics)

		educatorAPI.GET("/attempts/:attempt_id", handlers.Grading.GetAttempt)
		educatorAPI.POST("/attempts/:attempt_id/grade", handlers.Grading.GradeAttempt)

		educatorAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
