package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"
	ErrCodeTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// Reason — код ошибки компилятора (engine.ErrorCode).
	Reason string `json:"reason,omitempty"`

	// StepPath — шаг, на котором обнаружена структурная ошибка.
	StepPath string `json:"step_path,omitempty"`

	// Issues — неразрешённые ссылки (strict режим).
	Issues []domain.ValidationIssue `json:"issues,omitempty"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// Accepted отправляет ответ 202 для поставленной в очередь задачи.
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, DataResponse{Data: data})
}

// InvalidDocument отправляет ошибку 422.
func InvalidDocument(w http.ResponseWriter, detail ErrorDetail) {
	detail.Code = ErrCodeInvalidDocument
	JSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: detail})
}

// TooLarge отправляет ошибку 413.
func TooLarge(w http.ResponseWriter, limit int64) {
	Error(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
		fmt.Sprintf("document exceeds %d bytes", limit))
}

// Unavailable отправляет ошибку 503.
func Unavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// HandleCompileError преобразует ошибку компиляции в HTTP ответ.
//
// Нечитаемый документ и неизвестные опции — 400, документ, который
// разобрался, но не компилируется, — 422, остальное — 500.
func HandleCompileError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		TooLarge(w, maxErr.Limit)
		return true
	}

	detail := ErrorDetail{
		Message: err.Error(),
		Reason:  engine.ErrorCode(err),
	}

	var vErr *engine.ValidationError
	if errors.As(err, &vErr) {
		detail.StepPath = vErr.StepPath
	}

	var refErr *engine.ReferenceError
	if errors.As(err, &refErr) {
		detail.Issues = refErr.Issues
	}

	switch {
	case errors.Is(err, engine.ErrMalformedDocument), errors.Is(err, engine.ErrUnknownOption):
		detail.Code = ErrCodeBadRequest
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: detail})
	case engine.IsDocumentError(err):
		InvalidDocument(w, detail)
	default:
		InternalError(w, logger, err)
	}

	return true
}
