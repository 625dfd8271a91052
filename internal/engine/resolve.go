package engine

import "github.com/shaiso/Flowgraph/internal/domain"

// Resolve подставляет значения параметров документа вместо ссылок.
//
// Возвращает новый документ, исходный не изменяется. Ссылки на отсутствующие
// параметры остаются как есть — их находит ValidateReferences, а в подписи
// узла они помечаются как MISSING. Подстановка одноуровневая: значение
// параметра вставляется литералом, даже если само похоже на ссылку,
// поэтому Resolve(Resolve(d)) == Resolve(d).
func Resolve(doc *domain.Document) *domain.Document {
	if doc == nil {
		return nil
	}

	out := doc.Clone()
	defined := out.Parameters.Lookup()

	for i := range out.Workflow {
		resolveStep(&out.Workflow[i], defined)
	}

	return out
}

// resolveStep рекурсивно разрешает ссылки шага и его детей.
func resolveStep(step *domain.Step, defined map[string]string) {
	for i := range step.Parameters {
		step.Parameters[i].Value = ResolveValue(step.Parameters[i].Value, defined)
	}

	if step.IsParallel() {
		for i := range step.Steps {
			resolveStep(&step.Steps[i], defined)
		}
	}
}

// ResolveValue разрешает одно значение.
func ResolveValue(v domain.Value, defined map[string]string) domain.Value {
	if !v.IsReference() {
		return v
	}
	if value, ok := defined[v.Name()]; ok {
		return domain.Literal(value)
	}
	return v
}
