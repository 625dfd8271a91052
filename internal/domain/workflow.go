package domain

import "encoding/json"

// StepTypeParallel — тип шага-контейнера для параллельного выполнения.
const StepTypeParallel = "ParallelExecution"

// Document — декларативное описание workflow.
//
// Документ — это вход компилятора: последовательность шагов, часть из которых
// сгруппирована в параллельные блоки, и словарь параметров верхнего уровня,
// на который шаги ссылаются через $.parameters.<name>.
type Document struct {
	// Schema — ссылка на схему документа ($schema). Не интерпретируется.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty" mapstructure:"$schema"`

	// Name — имя workflow.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// Description — описание workflow.
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// ContentVersion — версия содержимого документа.
	ContentVersion string `json:"contentVersion,omitempty" yaml:"contentVersion,omitempty" mapstructure:"contentVersion"`

	// Metadata — произвольные метаданные, переносятся без изменений.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`

	// Parameters — словарь параметров верхнего уровня.
	// Значения используются как литералы при разрешении ссылок.
	Parameters Params `json:"parameters" yaml:"parameters" mapstructure:"parameters"`

	// Workflow — шаги в порядке выполнения.
	// nil означает, что ключ workflow в документе отсутствует.
	Workflow []Step `json:"workflow" yaml:"workflow" mapstructure:"workflow"`
}

// Step — один шаг workflow.
type Step struct {
	// Type — объявленный тип шага. "ParallelExecution" делает шаг контейнером.
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// Name — имя шага, идентификатор узла графа.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Description — описание шага.
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// Group — логическая группа шага. Не влияет на граф.
	Group string `json:"group,omitempty" yaml:"group,omitempty" mapstructure:"group"`

	// Parameters — параметры шага (литералы и ссылки).
	Parameters Params `json:"parameters" yaml:"parameters" mapstructure:"parameters"`

	// Steps — дочерние шаги (только для ParallelExecution).
	// nil означает, что ключ steps отсутствует.
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty" mapstructure:"steps"`
}

// IsParallel — true для параллельного блока.
func (s *Step) IsParallel() bool {
	return s.Type == StepTypeParallel
}

// MarshalJSON пишет steps для параллельного блока даже при пустом списке,
// чтобы сериализованный документ разбирался обратно без ошибок.
func (s Step) MarshalJSON() ([]byte, error) {
	type plain Step
	out := struct {
		plain
		Steps *[]Step `json:"steps,omitempty"`
	}{plain: plain(s)}

	if s.IsParallel() {
		steps := s.Steps
		if steps == nil {
			steps = []Step{}
		}
		out.Steps = &steps
	}

	return json.Marshal(out)
}

// Clone возвращает глубокую копию шага.
func (s Step) Clone() Step {
	out := s
	out.Parameters = s.Parameters.Clone()
	if s.Steps != nil {
		out.Steps = make([]Step, len(s.Steps))
		for i := range s.Steps {
			out.Steps[i] = s.Steps[i].Clone()
		}
	}
	return out
}

// Clone возвращает глубокую копию документа.
// Metadata копируется поверхностно: компилятор её не изменяет.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Parameters = d.Parameters.Clone()
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Workflow != nil {
		out.Workflow = make([]Step, len(d.Workflow))
		for i := range d.Workflow {
			out.Workflow[i] = d.Workflow[i].Clone()
		}
	}
	return &out
}
