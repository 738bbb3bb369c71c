package handler

import (
	"errors"
	"net/http"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/response"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/courseloom/courseloom-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GradingHandler handles educator grading endpoints.
type GradingHandler struct {
	gradingService *service.GradingService
	attemptService *service.AttemptService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(gradingService *service.GradingService, attemptService *service.AttemptService) *GradingHandler {
	return &GradingHandler{
		gradingService: gradingService,
		attemptService: attemptService,
	}
}

// GetAttempt godoc
// GET /api/v1/educator/attempts/:attempt_id
// Returns the full attempt, answer keys included, for grading review.
func (h *GradingHandler) GetAttempt(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetAttemptForEducator(c.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GradeAttempt godoc
// POST /api/v1/educator/attempts/:attempt_id/grade
// Applies a batch of manual grades. The batch is all-or-nothing.
func (h *GradingHandler) GradeAttempt(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.gradingService.GradeAttempt(c.Request.Context(), attemptID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotPending):
			response.Fail(c, http.StatusConflict, response.ErrAttemptNotPending)
		case errors.Is(err, service.ErrInvalidGradeBatch):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidGradeBatch)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
