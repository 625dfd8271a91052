package domain

// IssueKind — вид проблемы, найденной при проверке документа.
type IssueKind string

const (
	// IssueUndefinedParameterReference — ссылка на параметр, которого нет в документе.
	IssueUndefinedParameterReference IssueKind = "UndefinedParameterReference"

	// IssueMalformedParameterReference — строка с префиксом $.parameters.,
	// имя в которой пустое или составное. Значение остаётся литералом.
	IssueMalformedParameterReference IssueKind = "MalformedParameterReference"
)

// ValidationIssue — некритичная проблема документа.
//
// Проблемы не прерывают компиляцию: граф строится, а недостающие значения
// помечаются в подписях узлов. Вызывающая сторона сама решает, считать ли
// их ошибкой (strict режим).
type ValidationIssue struct {
	// StepPath — цепочка имён от верхнего уровня до шага ("parent -> step").
	StepPath string `json:"stepPath"`

	// Parameter — имя параметра шага.
	Parameter string `json:"parameter"`

	// Reference — исходная ссылка в том виде, как она записана в документе.
	Reference string `json:"reference"`

	// Kind — вид проблемы.
	Kind IssueKind `json:"kind"`
}
