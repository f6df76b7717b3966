package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrPlanNotFound     ErrCode = "PLAN_NOT_FOUND"
	ErrMajorNotFound    ErrCode = "MAJOR_NOT_FOUND"
	ErrMajorNotOnPlan   ErrCode = "MAJOR_NOT_ON_PLAN"
	ErrSemesterNotFound ErrCode = "SEMESTER_NOT_FOUND"
	ErrLectureNotFound  ErrCode = "LECTURE_NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDuplicateMajor   ErrCode = "DUPLICATE_MAJOR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to modify this plan."
	case ErrPermissionDenied:
		return "You do not have access to this plan."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrPlanNotFound:
		return "Plan not found."
	case ErrMajorNotFound:
		return "Major not found."
	case ErrMajorNotOnPlan:
		return "Major is not part of this plan."
	case ErrSemesterNotFound:
		return "Semester not found."
	case ErrLectureNotFound:
		return "Lecture not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDuplicateMajor:
		return "Major is already attached to this plan."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
