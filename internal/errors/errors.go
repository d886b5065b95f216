// Package errors provides structured error types for metis.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for metis.
const (
	// Filesystem and storage errors
	CodeIoFailure       Code = "IO_FAILURE"
	CodeDatabaseFailure Code = "DATABASE_FAILURE"

	// Lookup errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidWorkspace Code = "INVALID_WORKSPACE"

	// Document content errors
	CodeDocumentAlreadyExists Code = "DOCUMENT_ALREADY_EXISTS"
	CodeInvalidContent        Code = "INVALID_CONTENT"
	CodeMissingRequiredField  Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidShortCode      Code = "INVALID_SHORT_CODE"

	// Phase transition errors
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeExitCriteriaNotMet Code = "EXIT_CRITERIA_NOT_MET"
	CodeInvalidPhase       Code = "INVALID_PHASE"

	// Semantic validation errors
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidPrefix    Code = "INVALID_PREFIX"

	// Configuration errors
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
)

// MetisError is the structured error type for metis.
type MetisError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *MetisError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *MetisError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a MetisError with the same code.
func (e *MetisError) Is(target error) bool {
	t, ok := target.(*MetisError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// UserMessage returns a user-friendly message for CLI output.
func (e *MetisError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// WithCause returns a copy of the error with the given cause.
func (e *MetisError) WithCause(err error) *MetisError {
	return &MetisError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// HasCodeInChain reports whether err wraps a MetisError with the given code.
func HasCodeInChain(err error, code Code) bool {
	var me *MetisError
	if !stderrors.As(err, &me) {
		return false
	}
	return me.Code == code
}

// --- Error constructors ---

// ErrIo returns an error for a failed filesystem operation.
func ErrIo(op, path string, cause error) *MetisError {
	return &MetisError{
		Code:  CodeIoFailure,
		What:  fmt.Sprintf("failed to %s %s", op, path),
		Cause: cause,
	}
}

// ErrDatabase returns an error for a failed database operation.
func ErrDatabase(op string, cause error) *MetisError {
	return &MetisError{
		Code:  CodeDatabaseFailure,
		What:  fmt.Sprintf("database %s failed", op),
		Cause: cause,
	}
}

// ErrDocumentNotFound returns an error for a missing document.
func ErrDocumentNotFound(identifier string) *MetisError {
	return &MetisError{
		Code: CodeNotFound,
		What: fmt.Sprintf("document %q could not be found", identifier),
		Why:  "It may have been moved or deleted",
		Fix:  "Run 'metis sync' to refresh the index, then retry",
	}
}

// ErrFileNotFound returns an error for a missing file.
func ErrFileNotFound(path string) *MetisError {
	return &MetisError{
		Code: CodeNotFound,
		What: fmt.Sprintf("file %s does not exist", path),
	}
}

// ErrInvalidWorkspace returns an error when no workspace can be located.
func ErrInvalidWorkspace(path string) *MetisError {
	return &MetisError{
		Code: CodeInvalidWorkspace,
		What: fmt.Sprintf("no metis workspace found at %s", path),
		Why:  "No .metis/ directory exists here or in any parent directory",
		Fix:  "Run 'metis init' to create a workspace",
	}
}

// ErrDocumentExists returns an error when creation would overwrite a file.
func ErrDocumentExists(path string) *MetisError {
	return &MetisError{
		Code: CodeDocumentAlreadyExists,
		What: fmt.Sprintf("document already exists at %s", path),
		Fix:  "Choose a different title or remove the existing document",
	}
}

// ErrInvalidContent returns an error for malformed document content.
func ErrInvalidContent(why string) *MetisError {
	return &MetisError{
		Code: CodeInvalidContent,
		What: "document content is invalid",
		Why:  why,
	}
}

// ErrMissingField returns an error for a missing required frontmatter field.
func ErrMissingField(field string) *MetisError {
	return &MetisError{
		Code: CodeMissingRequiredField,
		What: fmt.Sprintf("required frontmatter field %q is missing", field),
	}
}

// ErrInvalidShortCode returns an error for a malformed short code string.
func ErrInvalidShortCode(code string) *MetisError {
	return &MetisError{
		Code: CodeInvalidShortCode,
		What: fmt.Sprintf("invalid short code %q", code),
		Why:  "Short codes have the form PREFIX-L-NNNN (e.g. ACME-T-0042)",
	}
}

// ErrInvalidTransition returns an error when the state machine refuses a move.
func ErrInvalidTransition(docType, from, to string) *MetisError {
	return &MetisError{
		Code: CodeInvalidTransition,
		What: fmt.Sprintf("cannot transition %s from %s to %s", docType, from, to),
		Why:  "Phase transitions must follow the document type's state machine",
	}
}

// ErrInvalidPhase returns an error when a document's phase tag is absent or ambiguous.
func ErrInvalidPhase(why string) *MetisError {
	return &MetisError{
		Code: CodeInvalidPhase,
		What: "document phase is invalid",
		Why:  why,
		Fix:  "Ensure the document carries exactly one #phase/<name> tag",
	}
}

// ExitCriteriaError reports a phase transition blocked by unchecked criteria.
type ExitCriteriaError struct {
	Missing int
	Total   int
}

// Error implements the error interface.
func (e *ExitCriteriaError) Error() string {
	return fmt.Sprintf("exit criteria not met: %d of %d incomplete", e.Missing, e.Total)
}

// Is reports whether target carries the ExitCriteriaNotMet code.
func (e *ExitCriteriaError) Is(target error) bool {
	if t, ok := target.(*MetisError); ok {
		return t.Code == CodeExitCriteriaNotMet
	}
	_, ok := target.(*ExitCriteriaError)
	return ok
}

// ErrExitCriteriaNotMet returns an error when unchecked criteria block a transition.
func ErrExitCriteriaNotMet(missing, total int) *ExitCriteriaError {
	return &ExitCriteriaError{Missing: missing, Total: total}
}

// ErrValidationFailed returns an error for a failed semantic check.
func ErrValidationFailed(why string) *MetisError {
	return &MetisError{
		Code: CodeValidationFailed,
		What: "validation failed",
		Why:  why,
	}
}

// ErrInvalidPrefix returns an error for a malformed project prefix.
func ErrInvalidPrefix(prefix string) *MetisError {
	return &MetisError{
		Code: CodeInvalidPrefix,
		What: fmt.Sprintf("invalid project prefix %q", prefix),
		Why:  "Prefixes are 2-8 uppercase characters starting with a letter (e.g. ACME)",
	}
}

// ErrConfiguration returns an error for a config parse or schema violation.
func ErrConfiguration(why string, cause error) *MetisError {
	return &MetisError{
		Code:  CodeConfigurationError,
		What:  "configuration is invalid",
		Why:   why,
		Cause: cause,
	}
}
