package handler

import (
	"errors"
	"net/http"

	"github.com/courseloom/courseloom-backend/internal/middleware"
	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/repository"
	"github.com/courseloom/courseloom-backend/internal/response"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/courseloom/courseloom-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AttemptHandler handles the student attempt lifecycle.
type AttemptHandler struct {
	attemptService *service.AttemptService
	quizService    *service.QuizService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, quizService *service.QuizService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		quizService:    quizService,
	}
}

// GetQuizPayload godoc
// GET /api/v1/student/quizzes/:quiz_id
// Returns the student-safe quiz payload (no answer keys) plus the caller's
// eligibility for a new attempt.
func (h *AttemptHandler) GetQuizPayload(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.quizService.GetPayload(c.Request.Context(), quizID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotPublished):
			response.Fail(c, http.StatusForbidden, response.ErrQuizNotPublished)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	eligibility, err := h.attemptService.CheckEligibility(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"quiz":        payload,
		"eligibility": eligibility,
	})
}

// StartAttempt godoc
// POST /api/v1/student/quizzes/:quiz_id/attempts
// Starts a new attempt with a frozen question snapshot.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.StartAttempt(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMaxAttemptsReached):
			response.Fail(c, http.StatusForbidden, response.ErrMaxAttemptsReached)
		case errors.Is(err, service.ErrDeadlinePassed):
			response.Fail(c, http.StatusForbidden, response.ErrDeadlinePassed)
		case errors.Is(err, service.ErrQuizNotPublished):
			response.Fail(c, http.StatusForbidden, response.ErrQuizNotPublished)
		case errors.Is(err, repository.ErrStatusConflict):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// GetAttempt godoc
// GET /api/v1/student/attempts/:attempt_id
// Returns the attempt with answer keys redacted unless the quiz reveals them
// and the attempt is finished.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
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

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetAttemptState godoc
// GET /api/v1/student/attempts/:attempt_id/state
// Returns autosaved draft answers and the remaining clock.
func (h *AttemptHandler) GetAttemptState(c *gin.Context) {
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

	state, err := h.attemptService.GetState(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// AutosaveAnswer godoc
// PUT /api/v1/student/attempts/:attempt_id/answers
// Stores one draft answer in Redis; persistence to PostgreSQL is async.
func (h *AttemptHandler) AutosaveAnswer(c *gin.Context) {
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

	var req model.AutosaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attemptService.Autosave(c.Request.Context(), attemptID, claims.UserID, &req); err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// SubmitAttempt godoc
// POST /api/v1/student/attempts/:attempt_id/submit
// Grades objective answers against the frozen snapshot and finalizes the
// attempt. Exactly one of two racing submissions wins.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
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

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.SubmitAttempt(c.Request.Context(), attemptID, claims.UserID, &req)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// ListMyAttempts godoc
// GET /api/v1/student/attempts
// Returns the caller's attempt history across quizzes.
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.attemptService.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// failAttemptError maps attempt domain errors to API error codes.
func failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrAttemptNotActive):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
