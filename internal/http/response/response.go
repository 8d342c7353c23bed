// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле ErrorCode — машиночитаемый код ошибки (опционально, при неуспехе).
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Details — детали по полям для ошибок валидации (опционально).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status    string            `json:"status"`
	ErrorCode string            `json:"error_code,omitempty"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Data      any               `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status    string `json:"status" example:"Error"`
	ErrorCode string `json:"error_code" example:"validation_error"`
	Error     string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Машиночитаемые коды ошибок, возвращаемые сервером.
const (
	CodeValidationError    = "validation_error"
	CodeEmailExists        = "email_exists"
	CodeUsernameExists     = "username_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInactiveAccount    = "inactive_account"
	CodeMissingToken       = "missing_token"
	CodeMalformedToken     = "malformed_token"
	CodeInvalidSignature   = "invalid_signature"
	CodeTokenExpired       = "token_expired"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой, кодом и переданным сообщением.
func Error(code, msg string) Response {
	return Response{
		Status:    StatusError,
		ErrorCode: code,
		Error:     msg,
	}
}

// ErrorWithDetails возвращает Response с ошибкой и деталями по полям.
func ErrorWithDetails(code, msg string, details map[string]string) Response {
	return Response{
		Status:    StatusError,
		ErrorCode: code,
		Error:     msg,
		Details:   details,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение превращается в человеко‑читаемый текст в Details
// под ключом соответствующего поля.
func ValidationError(errs validator.ValidationErrors) Response {
	details := make(map[string]string, len(errs))

	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.ActualTag() {
		case "required":
			details[field] = fmt.Sprintf("field %s is a required field", field)
		case "email":
			details[field] = fmt.Sprintf("field %s must be a valid email address", field)
		case "min":
			details[field] = fmt.Sprintf("field %s is shorter than %s characters", field, err.Param())
		case "max":
			details[field] = fmt.Sprintf("field %s is longer than %s characters", field, err.Param())
		case "gt":
			details[field] = fmt.Sprintf("field %s must be greater than %s", field, err.Param())
		case "eqfield":
			details[field] = fmt.Sprintf("field %s must match field %s", field, strings.ToLower(err.Param()))
		case "username_format":
			details[field] = fmt.Sprintf("field %s can contain only letters, numbers, underscores and hyphens", field)
		case "password_strength":
			details[field] = fmt.Sprintf("field %s must contain at least one letter and one number", field)
		default:
			details[field] = fmt.Sprintf("field %s is not valid", field)
		}
	}
	return Response{
		Status:    StatusError,
		ErrorCode: CodeValidationError,
		Error:     "request validation failed",
		Details:   details,
	}
}
