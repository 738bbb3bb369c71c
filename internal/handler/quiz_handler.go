package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/response"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/courseloom/courseloom-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QuizHandler handles quiz management endpoints for educators.
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
	}
}

// ListQuizzes godoc
// GET /api/v1/educator/courses/:course_id/quizzes
// Lists all quizzes of a course, drafts included.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuiz godoc
// GET /api/v1/educator/quizzes/:quiz_id
// Returns the full quiz definition including answer keys.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), quizID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// CreateQuiz godoc
// POST /api/v1/educator/quizzes
// Creates a new draft quiz.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestions) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// UpdateQuiz godoc
// PUT /api/v1/educator/quizzes/:quiz_id
// Updates a draft quiz. Published quizzes are immutable.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), quizID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizPublished):
			response.Fail(c, http.StatusConflict, response.ErrQuizNotDraft)
		case errors.Is(err, service.ErrInvalidQuestions):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestions)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// DeleteQuiz godoc
// DELETE /api/v1/educator/quizzes/:quiz_id
// Deletes a draft quiz.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID); err != nil {
		switch {
		case errors.Is(err, service.ErrQuizPublished):
			response.Fail(c, http.StatusConflict, response.ErrQuizNotDraft)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted"})
}

// PublishQuiz godoc
// POST /api/v1/educator/quizzes/:quiz_id/publish
// Validates the question set, publishes the quiz and warms its payload cache.
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.Publish(c.Request.Context(), quizID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuestions):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestions)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// UnpublishQuiz godoc
// POST /api/v1/educator/quizzes/:quiz_id/unpublish
// Hides a quiz from students. Existing attempts keep their snapshots.
func (h *QuizHandler) UnpublishQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Unpublish(c.Request.Context(), quizID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quiz unpublished"})
}

// ListQuizAttempts godoc
// GET /api/v1/educator/quizzes/:quiz_id/attempts
// Returns paginated attempt results, optionally filtered by status
// (?status=pending surfaces the grading queue).
func (h *QuizHandler) ListQuizAttempts(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	var status *model.AttemptStatus
	if s := c.Query("status"); s != "" {
		st := model.AttemptStatus(s)
		status = &st
	}

	results, total, err := h.attemptService.ListByQuiz(c.Request.Context(), quizID, status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": results}, pagination)
}
