package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// Структурные ошибки документа. Прерывают компиляцию.
var (
	// ErrMalformedDocument — документ не соответствует формату
	// (нет workflow, у шага нет type/name, у блока нет steps, битый JSON/YAML).
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDuplicateStepName — два узла графа получили одинаковый идентификатор.
	ErrDuplicateStepName = errors.New("duplicate step name")

	// ErrParameterConflict — шаги одного типа внутри параллельного блока
	// задают один и тот же параметр разными значениями (политика MergeRejectConflict).
	ErrParameterConflict = errors.New("conflicting parameter values")
)

// Ошибки ссылок на параметры.
var (
	// ErrUndefinedParameter — ссылка на несуществующий параметр.
	// Фатальна только в strict режиме.
	ErrUndefinedParameter = errors.New("undefined parameter reference")
)

// Ошибки графа.
var (
	// ErrCyclicGraph — в графе есть цикл (возможен при DuplicateMerge).
	ErrCyclicGraph = errors.New("graph contains a cycle")

	// ErrUnknownOption — неизвестное значение опции компилятора.
	ErrUnknownOption = errors.New("unknown option value")
)

// ValidationError — структурная ошибка с контекстом шага.
type ValidationError struct {
	StepPath string // цепочка имён до шага, пустая для уровня документа
	Field    string // поле, вызвавшее ошибку
	Message  string // описание ошибки
	Err      error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepPath != "" {
		return "step " + e.StepPath + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(stepPath, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepPath: stepPath,
		Field:    field,
		Message:  message,
		Err:      err,
	}
}

// ReferenceError — неразрешённые ссылки, поднятые до ошибки в strict режиме.
type ReferenceError struct {
	Issues []domain.ValidationIssue
}

// Error реализует интерфейс error.
func (e *ReferenceError) Error() string {
	refs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		refs = append(refs, fmt.Sprintf("%s.%s=%s", issue.StepPath, issue.Parameter, issue.Reference))
	}
	return fmt.Sprintf("%d unresolved parameter reference(s): %s", len(e.Issues), strings.Join(refs, ", "))
}

// Unwrap возвращает ErrUndefinedParameter.
func (e *ReferenceError) Unwrap() error {
	return ErrUndefinedParameter
}

// ErrorCode возвращает короткий код ошибки компиляции
// для метрик, HTTP ответов и сообщений очереди.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrDuplicateStepName):
		return "duplicate_step_name"
	case errors.Is(err, ErrParameterConflict):
		return "parameter_conflict"
	case errors.Is(err, ErrUndefinedParameter):
		return "undefined_parameter"
	case errors.Is(err, ErrCyclicGraph):
		return "cyclic_graph"
	case errors.Is(err, ErrUnknownOption):
		return "unknown_option"
	default:
		return "internal"
	}
}

// IsDocumentError — true, если ошибка вызвана содержимым документа
// или опциями запроса, а не инфраструктурой. Такие ошибки бессмысленно повторять.
func IsDocumentError(err error) bool {
	code := ErrorCode(err)
	return code != "ok" && code != "internal"
}
