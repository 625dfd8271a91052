package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// Syntax — синтаксис входного документа.
type Syntax string

const (
	SyntaxAuto Syntax = "auto"
	SyntaxJSON Syntax = "json"
	SyntaxYAML Syntax = "yaml"
)

// SyntaxFromFilename определяет синтаксис по расширению файла.
func SyntaxFromFilename(name string) Syntax {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return SyntaxJSON
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxAuto
	}
}

// SyntaxFromContentType определяет синтаксис по Content-Type.
func SyntaxFromContentType(contentType string) Syntax {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return SyntaxJSON
	case strings.Contains(ct, "yaml"):
		return SyntaxYAML
	default:
		return SyntaxAuto
	}
}

// detectSyntax угадывает синтаксис по содержимому: JSON документ — объект.
func detectSyntax(data []byte) Syntax {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return SyntaxJSON
	}
	return SyntaxYAML
}

// Parse разбирает документ из JSON или YAML и проверяет его структуру.
func Parse(data []byte, syntax Syntax) (*domain.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewValidationError("", "", "document is empty", ErrMalformedDocument)
	}

	if syntax == "" || syntax == SyntaxAuto {
		syntax = detectSyntax(data)
	}

	var doc domain.Document
	switch syntax {
	case SyntaxJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, NewValidationError("", "", fmt.Sprintf("invalid JSON: %v", err), ErrMalformedDocument)
		}
	case SyntaxYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, NewValidationError("", "", fmt.Sprintf("invalid YAML: %v", err), ErrMalformedDocument)
		}
	default:
		return nil, fmt.Errorf("%w: syntax=%q", ErrUnknownOption, syntax)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// paramsType — тип, для которого срабатывает хук декодирования.
var paramsType = reflect.TypeOf(domain.Params{})

// paramsHook превращает map параметров в упорядоченный domain.Params.
// Порядок ключей в map не определён, поэтому ключи сортируются.
func paramsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != paramsType {
		return data, nil
	}

	m, ok := data.(map[string]any)
	if !ok {
		if data == nil {
			return domain.Params(nil), nil
		}
		return nil, fmt.Errorf("parameters must be an object, got %T", data)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(domain.Params, 0, len(keys))
	for _, k := range keys {
		text, err := genericText(m[k])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		params = append(params, domain.Param{Key: k, Value: domain.ParseValue(text)})
	}
	return params, nil
}

// genericText приводит значение из map[string]any к строке параметра.
func genericText(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(val), nil
	}
}

// DecodeRaw собирает документ из уже разобранного JSON/YAML (map[string]any)
// и проверяет его структуру.
func DecodeRaw(raw map[string]any) (*domain.Document, error) {
	if raw == nil {
		return nil, NewValidationError("", "", "document is empty", ErrMalformedDocument)
	}

	var doc domain.Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       paramsHook,
		WeaklyTypedInput: true,
		Result:           &doc,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, NewValidationError("", "", fmt.Sprintf("invalid document: %v", err), ErrMalformedDocument)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate выполняет структурную проверку документа.
//
// Проверяет:
// - Наличие workflow
// - Наличие type и name у каждого шага (включая вложенные)
// - Наличие steps у параллельных блоков
//
// Ссылки на параметры не проверяются (см. ValidateReferences),
// уникальность имён зависит от DuplicatePolicy и проверяется при построении графа.
func Validate(doc *domain.Document) error {
	if doc == nil {
		return NewValidationError("", "", "document is empty", ErrMalformedDocument)
	}

	if doc.Workflow == nil {
		return NewValidationError("", "workflow", "document has no workflow", ErrMalformedDocument)
	}

	for i := range doc.Workflow {
		if err := ValidateStep(&doc.Workflow[i], "", i); err != nil {
			return err
		}
	}

	return nil
}

// ValidateStep проверяет один шаг и, для параллельного блока, его детей.
// parent — путь родителя, index — позиция шага (для сообщений о безымянных шагах).
func ValidateStep(step *domain.Step, parent string, index int) error {
	label := step.Name
	if label == "" {
		label = fmt.Sprintf("#%d", index+1)
	}
	path := stepPath(parent, label)

	if step.Type == "" {
		return NewValidationError(path, "type", "step has no type", ErrMalformedDocument)
	}

	if step.Name == "" {
		return NewValidationError(path, "name", "step has no name", ErrMalformedDocument)
	}

	if step.IsParallel() {
		if step.Steps == nil {
			return NewValidationError(path, "steps", "parallel block has no steps", ErrMalformedDocument)
		}
		for i := range step.Steps {
			if err := ValidateStep(&step.Steps[i], path, i); err != nil {
				return err
			}
		}
	}

	return nil
}

// stepPath формирует человекочитаемый путь шага.
func stepPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + " -> " + name
}
