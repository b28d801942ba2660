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

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
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
	ErrCodeNotReady      = "NOT_READY"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeIngestion     = "INGESTION_ERROR"
	ErrCodeRetrieval     = "RETRIEVAL_ERROR"
	ErrCodeGeneration    = "GENERATION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyDocumentID = NewDomainError(ErrCodeValidation, "document id must not be empty")
	ErrEmptyQuery      = NewDomainError(ErrCodeValidation, "query must not be empty")
)

// Lifecycle errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrIngestInProgress = NewDomainError(ErrCodeAlreadyExists, "ingestion already in progress for this document")
	ErrDocumentExists   = NewDomainError(ErrCodeAlreadyExists, "document already ingested")
)

// Ingestion errors
var (
	ErrNoExtractableContent = NewDomainError(ErrCodeIngestion, "no extractable content")
	ErrIngestTimedOut       = NewDomainError(ErrCodeIngestion, "ingestion timed out")
)

// Retrieval errors
var (
	ErrDimensionMismatch = NewDomainError(ErrCodeRetrieval, "embedding dimension mismatch, re-ingest required")
)

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	domainErr, ok := err.(*DomainError)
	return ok && domainErr.Code == code
}
