package domain

import "fmt"

// Error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeDateParse         = "DATE_PARSE_ERROR"
	ErrCodeUnknownRuleCode   = "UNKNOWN_RULE_CODE"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeValidation        = "VALIDATION_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a snapshot parse error
func NewParseError(path string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse snapshot: %s", path), cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a snapshot validation error
func NewValidationError(message string, cause error) error {
	return NewDomainError(ErrCodeValidation, message, cause)
}

// NewUnknownRuleCodeError reports a lookup of a code that is not in the violation catalog
func NewUnknownRuleCodeError(code string) error {
	return NewDomainError(ErrCodeUnknownRuleCode, fmt.Sprintf("unknown rule code: %s", code), nil)
}

// DateParseError is returned when a temporal field cannot be parsed.
// The engine never substitutes a fallback date.
type DateParseError struct {
	Value string
	Cause error
}

// Error implements the error interface
func (e *DateParseError) Error() string {
	return fmt.Sprintf("[%s] cannot parse date %q", ErrCodeDateParse, e.Value)
}

// Unwrap returns the parse error of the last layout tried
func (e *DateParseError) Unwrap() error {
	return e.Cause
}

// NewDateParseError creates a date parse error for value
func NewDateParseError(value string, cause error) *DateParseError {
	return &DateParseError{Value: value, Cause: cause}
}
