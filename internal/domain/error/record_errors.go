package error

import "errors"

// Record validation errors for payment and expense endpoints.
var (
	// ErrInvalidAmount is returned when an amount cannot be parsed as a decimal.
	ErrInvalidAmount = errors.New("amount must be a valid decimal number")

	// ErrMissingPaymentType is returned when a payment has no type.
	ErrMissingPaymentType = errors.New("payment type is required")

	// ErrMissingExpenseCategory is returned when an expense has no category.
	ErrMissingExpenseCategory = errors.New("expense category is required")

	// ErrMissingOccurredAt is returned when a record has no date.
	ErrMissingOccurredAt = errors.New("record date is required")

	// ErrRecordNotFound is returned when a record does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// RecordErrorCode defines error codes for record errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecordErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidAmount          RecordErrorCode = "REC-010001"
	ErrCodeMissingPaymentType     RecordErrorCode = "REC-010002"
	ErrCodeMissingExpenseCategory RecordErrorCode = "REC-010003"
	ErrCodeMissingOccurredAt      RecordErrorCode = "REC-010004"

	// Lookup errors (02XXXX)
	ErrCodeRecordNotFound RecordErrorCode = "REC-020001"

	// Internal errors (99XXXX)
	ErrCodeRecordInternalError RecordErrorCode = "REC-990001"
)

// RecordError represents a record validation error with code and message.
type RecordError struct {
	Code    RecordErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError with the given code and message.
func NewRecordError(code RecordErrorCode, message string, err error) *RecordError {
	return &RecordError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
