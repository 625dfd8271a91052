package engine

import "github.com/shaiso/Flowgraph/internal/domain"

// ValidateReferences находит все ссылки на неопределённые параметры
// и строки, похожие на ссылку, но не разбираемые как ссылка.
//
// Документ не изменяется. Порядок проблем совпадает с порядком обхода:
// шаги сверху вниз, дети параллельного блока в объявленном порядке,
// параметры в порядке документа. Пустой результат означает, что все
// ссылки разрешимы.
func ValidateReferences(doc *domain.Document) []domain.ValidationIssue {
	issues := make([]domain.ValidationIssue, 0)
	if doc == nil {
		return issues
	}

	defined := doc.Parameters.Lookup()
	for i := range doc.Workflow {
		issues = append(issues, stepIssues(&doc.Workflow[i], "", defined)...)
	}

	return issues
}

// stepIssues возвращает проблемы одного шага и его детей.
func stepIssues(step *domain.Step, parent string, defined map[string]string) []domain.ValidationIssue {
	path := stepPath(parent, step.Name)

	var issues []domain.ValidationIssue
	for _, param := range step.Parameters {
		var kind domain.IssueKind
		switch {
		case param.Value.IsMalformedReference():
			kind = domain.IssueMalformedParameterReference
		case !param.Value.IsReference():
			continue
		default:
			if _, ok := defined[param.Value.Name()]; ok {
				continue
			}
			kind = domain.IssueUndefinedParameterReference
		}

		issues = append(issues, domain.ValidationIssue{
			StepPath:  path,
			Parameter: param.Key,
			Reference: param.Value.Raw(),
			Kind:      kind,
		})
	}

	if step.IsParallel() {
		for i := range step.Steps {
			issues = append(issues, stepIssues(&step.Steps[i], path, defined)...)
		}
	}

	return issues
}
