// Package error defines domain-specific errors for the study-room finance API.
package error

import "errors"

// Report domain errors.
var (
	// ErrMissingStartDate is returned when start_date is required but absent.
	ErrMissingStartDate = errors.New("start_date is required")

	// ErrMissingEndDate is returned when end_date is required but absent.
	ErrMissingEndDate = errors.New("end_date is required")

	// ErrInvalidDateRange is returned when end_date is before start_date.
	ErrInvalidDateRange = errors.New("end_date must not be before start_date")

	// ErrInvalidDateFormat is returned when a date parameter cannot be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrReportUnavailable is returned when both the detail endpoint and the
	// fallback list endpoints failed to produce an aggregate.
	ErrReportUnavailable = errors.New("report data unavailable")

	// ErrGroupLoadFailed is returned when a single group's page load failed.
	ErrGroupLoadFailed = errors.New("failed to load more items for group")

	// ErrMalformedRecord marks a record whose amount or date could not be
	// parsed. It never aborts aggregation.
	ErrMalformedRecord = errors.New("malformed financial record")

	// ErrInvalidPeriodParam is returned when the monthly summary period
	// parameter is not month or year.
	ErrInvalidPeriodParam = errors.New("period must be: month or year")
)

// ReportErrorCode defines error codes for report errors.
// Format: RPT-XXYYYY where XX is category and YYYY is specific error.
type ReportErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeMissingStartDate   ReportErrorCode = "RPT-010001"
	ErrCodeMissingEndDate     ReportErrorCode = "RPT-010002"
	ErrCodeInvalidDateRange   ReportErrorCode = "RPT-010003"
	ErrCodeInvalidDateFormat  ReportErrorCode = "RPT-010004"
	ErrCodeInvalidPeriodParam ReportErrorCode = "RPT-010005"

	// Data availability errors (02XXXX)
	ErrCodeReportUnavailable ReportErrorCode = "RPT-020001"
	ErrCodeGroupLoadFailed   ReportErrorCode = "RPT-020002"

	// Record errors (03XXXX)
	ErrCodeMalformedRecord ReportErrorCode = "RPT-030001"

	// Internal errors (99XXXX)
	ErrCodeReportInternalError ReportErrorCode = "RPT-990001"
)

// ReportError represents a report error with code and message.
type ReportError struct {
	Code    ReportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError creates a new ReportError with the given code and message.
func NewReportError(code ReportErrorCode, message string, err error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
