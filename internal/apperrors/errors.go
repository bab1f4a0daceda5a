package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBadInput is returned when the decoded URL does not start with the
// literal, case-sensitive prefix "http".
type ErrBadInput struct {
	URL string
}

// Error implements the error interface.
func (e *ErrBadInput) Error() string {
	return "Invalid URL"
}

// Is allows for error checking with errors.Is().
func (e *ErrBadInput) Is(target error) bool {
	_, ok := target.(*ErrBadInput)
	return ok
}

// NewBadInputError creates a new ErrBadInput.
func NewBadInputError(url string) *ErrBadInput {
	return &ErrBadInput{URL: url}
}

// ErrInvalidSource is returned when the URL does not look like a YouTube video URL.
type ErrInvalidSource struct {
	URL string
}

// Error implements the error interface.
func (e *ErrInvalidSource) Error() string {
	return "Invalid YouTube URL"
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidSource) Is(target error) bool {
	_, ok := target.(*ErrInvalidSource)
	return ok
}

// NewInvalidSourceError creates a new ErrInvalidSource.
func NewInvalidSourceError(url string) *ErrInvalidSource {
	return &ErrInvalidSource{URL: url}
}

// ErrInvalidSubmission is returned when the request body cannot be decoded or
// a required field is missing.
type ErrInvalidSubmission struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidSubmission) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidSubmission) Is(target error) bool {
	_, ok := target.(*ErrInvalidSubmission)
	return ok
}

// NewMissingFieldError creates an ErrInvalidSubmission for a required field.
func NewMissingFieldError(field string) *ErrInvalidSubmission {
	return &ErrInvalidSubmission{Field: field, Reason: "field required"}
}

// NewInvalidBodyError creates an ErrInvalidSubmission for an undecodable body.
func NewInvalidBodyError(err error) *ErrInvalidSubmission {
	return &ErrInvalidSubmission{Reason: fmt.Sprintf("invalid request body: %v", err)}
}

// ErrExtraction is returned when the external download/transcode toolchain fails
// for any reason. The original error text is preserved.
type ErrExtraction struct {
	Err error
}

// Error implements the error interface.
func (e *ErrExtraction) Error() string {
	return fmt.Sprintf("Download failed: %v", e.Err)
}

// Unwrap returns the underlying toolchain error.
func (e *ErrExtraction) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrExtraction) Is(target error) bool {
	_, ok := target.(*ErrExtraction)
	return ok
}

// NewExtractionError wraps err into an ErrExtraction.
func NewExtractionError(err error) *ErrExtraction {
	return &ErrExtraction{Err: err}
}

// IsClientError reports whether err is one of the request rejections that must
// reach the caller unchanged.
func IsClientError(err error) bool {
	return errors.Is(err, &ErrBadInput{}) ||
		errors.Is(err, &ErrInvalidSource{}) ||
		errors.Is(err, &ErrInvalidSubmission{})
}

// StatusCode maps an error to the HTTP status sent to the caller.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, &ErrBadInput{}), errors.Is(err, &ErrInvalidSource{}):
		return http.StatusBadRequest
	case errors.Is(err, &ErrInvalidSubmission{}):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Detail renders the "detail" field of an error response. Client errors are
// passed through as-is, everything else is reported as an internal error.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	if IsClientError(err) {
		return err.Error()
	}
	return fmt.Sprintf("Internal server error: %v", err)
}
