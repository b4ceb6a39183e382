package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeNotification   ErrorCode = "NOTIFICATION_ERROR"
	ErrCodeRelocation     ErrorCode = "RELOCATION_ERROR"
	ErrCodeUpstream       ErrorCode = "UPSTREAM_ERROR"
	ErrCodePayloadTooBig  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInvalidStateOp ErrorCode = "INVALID_STATE"
)

// Kind: закрытый набор категорий ошибок при подаче сообщения.
type Kind string

const (
	KindNone         Kind = ""
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
	KindNotification Kind = "notification"
	KindRelocation   Kind = "relocation"
)

type AppError struct {
	Code       ErrorCode
	Kind       Kind
	Message    string
	HTTPStatus int
	// Fields содержит ошибки по полям: имя поля -> ключ каталога переводов.
	Fields map[string]string
	Cause  error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Kind:       codeToKind(code),
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Kind:       codeToKind(code),
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации с ошибками по полям.
func Validation(message string, fields map[string]string) *AppError {
	err := New(ErrCodeValidation, message)
	err.Fields = fields
	return err
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidStateOp:
		return http.StatusConflict
	case ErrCodePayloadTooBig:
		return http.StatusRequestEntityTooLarge
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeToKind(code ErrorCode) Kind {
	switch code {
	case ErrCodeValidation:
		return KindValidation
	case ErrCodeDatabaseError:
		return KindPersistence
	case ErrCodeNotification:
		return KindNotification
	case ErrCodeRelocation:
		return KindRelocation
	default:
		return KindNone
	}
}

// KindOf возвращает категорию ошибки или KindNone.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindNone
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsPersistence(err error) bool {
	return KindOf(err) == KindPersistence
}

var (
	ErrReportNotFound          = New(ErrCodeNotFound, "сообщение не найдено")
	ErrSessionNotFound         = New(ErrCodeNotFound, "сессия мастера не найдена или истекла")
	ErrIncidentTypeNotFound    = New(ErrCodeNotFound, "тип инцидента не найден")
	ErrIncidentSubtypeNotFound = New(ErrCodeNotFound, "подтип инцидента не найден")
	ErrAdminNotFound           = New(ErrCodeNotFound, "администратор не найден")
	ErrUnauthorized            = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden               = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials      = New(ErrCodeUnauthorized, "неверные учетные данные")
)
