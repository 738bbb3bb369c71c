package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrEducatorAccessOnly ErrCode = "EDUCATOR_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz / Attempt-specific ───────────────────────────────────────
	ErrQuizNotPublished   ErrCode = "QUIZ_NOT_PUBLISHED"
	ErrQuizNotDraft       ErrCode = "QUIZ_NOT_DRAFT"
	ErrInvalidQuestions   ErrCode = "INVALID_QUESTIONS"
	ErrMaxAttemptsReached ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrDeadlinePassed     ErrCode = "DEADLINE_PASSED"
	ErrAlreadySubmitted   ErrCode = "ALREADY_SUBMITTED"
	ErrAttemptNotPending  ErrCode = "ATTEMPT_NOT_PENDING"
	ErrInvalidGradeBatch  ErrCode = "INVALID_GRADE_BATCH"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrEducatorAccessOnly:
		return "This resource is restricted to educators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Quiz / Attempt-specific ───────────────────────────────────────
	case ErrQuizNotPublished:
		return "This quiz has not been published."
	case ErrQuizNotDraft:
		return "This quiz is already published and can no longer be edited."
	case ErrInvalidQuestions:
		return "The quiz question set is not valid for publication."
	case ErrMaxAttemptsReached:
		return "You have used all attempts for this quiz."
	case ErrDeadlinePassed:
		return "The deadline for this quiz has passed."
	case ErrAlreadySubmitted:
		return "This attempt has already been submitted."
	case ErrAttemptNotPending:
		return "This attempt is not awaiting manual grading."
	case ErrInvalidGradeBatch:
		return "One or more grades are out of range for their questions."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
