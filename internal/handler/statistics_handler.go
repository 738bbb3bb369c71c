package handler

import (
	"net/http"

	"github.com/courseloom/courseloom-backend/internal/middleware"
	"github.com/courseloom/courseloom-backend/internal/response"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatisticsHandler serves aggregated quiz and student statistics.
type StatisticsHandler struct {
	statsService *service.StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

// GetQuizStatistics godoc
// GET /api/v1/educator/quizzes/:quiz_id/statistics
// Returns the aggregate view of a quiz. Pending attempts are excluded.
func (h *StatisticsHandler) GetQuizStatistics(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.statsService.GetQuizStatistics(c.Request.Context(), quizID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}

// GetMyStatistics godoc
// GET /api/v1/student/statistics
// Returns the caller's per-quiz aggregates.
func (h *StatisticsHandler) GetMyStatistics(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	stats, err := h.statsService.GetStudentStatistics(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}
