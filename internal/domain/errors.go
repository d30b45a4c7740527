package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a wrapped DomainError against its sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Upstream capability errors. Retrieval callers recover from these by
// generating without added context; ingestion callers surface them.
var (
	ErrEmbeddingUnavailable  = NewDomainError(ErrCodeUnavailable, "embedding provider unavailable")
	ErrGenerationUnavailable = NewDomainError(ErrCodeUnavailable, "generation provider unavailable")
	ErrStoreUnavailable      = NewDomainError(ErrCodeUnavailable, "chunk store unavailable")
)

// Validation errors
var (
	ErrEmptyDocument  = NewDomainError(ErrCodeValidation, "document has no extractable text")
	ErrMissingMessage = NewDomainError(ErrCodeValidation, "conversation has no user message")
)

// Not found errors
var (
	ErrConversationNotFound = NewDomainError(ErrCodeNotFound, "conversation not found")
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
)

// Authorization errors
var (
	ErrPathNotOwned = NewDomainError(ErrCodeUnauthorized, "path does not belong to caller")
	ErrInvalidToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)
