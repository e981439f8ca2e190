package errx

import (
	"fmt"
	"net/http"
)

// Type classifies errors into broad categories used by the HTTP error handler
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
	TypeInternal      Type = "INTERNAL"
)

// Error is a typed application error with an HTTP mapping and optional details
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a contextual key/value pair to the error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Code is a registered error definition; instances are created via Registry.New
type ErrorCode struct {
	code       string
	errType    Type
	httpStatus int
	message    string
}

// Registry namespaces error codes per domain (e.g. "MEMORY", "CHAT")
type Registry struct {
	prefix string
}

// NewRegistry creates a registry whose codes are prefixed with the given domain
func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix}
}

// Register defines an error code within the registry
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) ErrorCode {
	return ErrorCode{
		code:       r.prefix + "_" + code,
		errType:    errType,
		httpStatus: httpStatus,
		message:    message,
	}
}

// New instantiates an error from a registered code
func (r *Registry) New(code ErrorCode) *Error {
	return &Error{
		Code:       code.code,
		Type:       code.errType,
		Message:    code.message,
		HTTPStatus: code.httpStatus,
	}
}

// New creates an untyped ad hoc error
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Type:       errType,
		Message:    message,
		HTTPStatus: defaultStatus(errType),
	}
}

// Wrap wraps an underlying error with a message and type
func Wrap(err error, message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Type:       errType,
		Message:    message,
		HTTPStatus: defaultStatus(errType),
		Err:        err,
	}
}

func defaultStatus(errType Type) int {
	switch errType {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
