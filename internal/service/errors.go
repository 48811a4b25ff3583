package service

import "fmt"

const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewUnauthenticated() *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthenticated,
		Message: "Требуется вход в систему",
		Details: map[string]any{},
	}
}

func NewAuthRequired(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeAuthRequired,
		Message: "Требуется повторная авторизация в Google",
		Details: map[string]any{},
		Err:     err,
	}
}

func NewUpstreamUnavailable(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeUpstreamUnavailable,
		Message: "Календарь Google временно недоступен",
		Details: map[string]any{},
		Err:     err,
	}
}
