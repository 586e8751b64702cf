package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure raised by the service layer.
type Kind int

const (
	KindGeneral Kind = iota
	KindNotFound
	KindInvalidCredentials
	KindAlreadyExists
	KindValidation
	KindWrongPassword
	KindEmailInUse
	KindInvalidInput
	KindDatabase
	KindUnauthorized
	KindRequiredField
	KindInvalidDate
	KindInvalidStatus
)

type kindInfo struct {
	code    string
	message string
	status  int
}

// codes are shared with the web client, do not renumber.
var kinds = map[Kind]kindInfo{
	KindNotFound:           {"1001", "record not found", http.StatusNotFound},
	KindInvalidCredentials: {"1002", "invalid email or password", http.StatusUnauthorized},
	KindAlreadyExists:      {"1003", "record already exists", http.StatusConflict},
	KindValidation:         {"1004", "validation failed", http.StatusBadRequest},
	KindWrongPassword:      {"1005", "wrong password", http.StatusUnauthorized},
	KindEmailInUse:         {"1006", "email address is already in use", http.StatusConflict},
	KindInvalidInput:       {"1007", "invalid input", http.StatusBadRequest},
	KindDatabase:           {"1008", "database operation failed", http.StatusConflict},
	KindUnauthorized:       {"1009", "not authorized for this operation", http.StatusForbidden},
	KindRequiredField:      {"1010", "required field is missing", http.StatusBadRequest},
	KindInvalidDate:        {"1011", "invalid date format", http.StatusBadRequest},
	KindInvalidStatus:      {"1012", "invalid status value", http.StatusBadRequest},
	KindGeneral:            {"9999", "an unexpected error occurred", http.StatusInternalServerError},
}

func (k Kind) info() kindInfo {
	if i, ok := kinds[k]; ok {
		return i
	}
	return kinds[KindGeneral]
}

// Code is the stable numeric code sent to clients.
func (k Kind) Code() string { return k.info().code }

// Message is the default human readable message of the kind.
func (k Kind) Message() string { return k.info().message }

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation_error"
	case KindWrongPassword:
		return "wrong_password"
	case KindEmailInUse:
		return "email_in_use"
	case KindInvalidInput:
		return "invalid_input"
	case KindDatabase:
		return "database_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindRequiredField:
		return "required_field"
	case KindInvalidDate:
		return "invalid_date"
	case KindInvalidStatus:
		return "invalid_status"
	default:
		return "general_error"
	}
}

// HTTPStatus maps a kind to the status code the API boundary responds with.
// It is the only place where the taxonomy meets transport status codes.
func HTTPStatus(k Kind) int {
	return k.info().status
}

// Error is the typed failure returned by services.
type Error struct {
	Kind   Kind
	Detail string
	// Fields holds field -> message pairs for KindValidation.
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.Message()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on kind: errors.Is(err, apperr.New(apperr.KindNotFound, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap keeps cause for logging; it is never rendered to clients.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

func NotFound(detail string) *Error { return New(KindNotFound, detail) }

func EmailInUse() *Error { return New(KindEmailInUse, "") }

func WrongPassword() *Error { return New(KindWrongPassword, "") }

func RequiredField(detail string) *Error { return New(KindRequiredField, detail) }

func InvalidInput(detail string) *Error { return New(KindInvalidInput, detail) }

func Database(cause error) *Error { return Wrap(KindDatabase, "", cause) }

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// KindOf classifies any error. Errors outside the taxonomy are KindGeneral.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// As returns the typed error when err is (or wraps) one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
