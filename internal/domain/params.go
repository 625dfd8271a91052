package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Param — один параметр шага.
type Param struct {
	Key   string
	Value Value
}

// Params — упорядоченный набор параметров.
//
// Порядок совпадает с порядком ключей в исходном документе, чтобы подписи
// узлов выводились так же, как их написал автор workflow. Ключи уникальны:
// повторная запись ключа заменяет значение, сохраняя позицию.
type Params []Param

// NewParams строит набор из map, ключи сортируются.
func NewParams(m map[string]string) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := make(Params, 0, len(keys))
	for _, k := range keys {
		p = append(p, Param{Key: k, Value: ParseValue(m[k])})
	}
	return p
}

// Get возвращает значение по ключу.
func (p Params) Get(key string) (Value, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return Value{}, false
}

// Set записывает значение. Существующий ключ сохраняет позицию.
func (p *Params) Set(key string, value Value) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Keys возвращает ключи в порядке документа.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, param := range p {
		keys[i] = param.Key
	}
	return keys
}

// Lookup возвращает параметры как map ключ → исходная строка.
func (p Params) Lookup() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Key] = param.Value.Raw()
	}
	return m
}

// Clone возвращает копию набора.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// MarshalJSON сериализует параметры как JSON объект с сохранением порядка.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(param.Value.Raw())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON читает JSON объект, сохраняя порядок ключей.
// null даёт пустой набор.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameters must be an object, got %v", tok)
	}

	out := make(Params, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parameter key must be a string, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("parameter %q: %w", key, err)
		}
		text, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", key, err)
		}
		out.Set(key, ParseValue(text))
	}

	// Закрывающая скобка
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

// UnmarshalYAML читает YAML mapping, сохраняя порядок ключей.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}

	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		text, err := yamlScalarText(valNode)
		if err != nil {
			return fmt.Errorf("line %d: parameter %q: %w", valNode.Line, keyNode.Value, err)
		}
		out.Set(keyNode.Value, ParseValue(text))
	}

	*p = out
	return nil
}

// MarshalYAML сериализует параметры как YAML mapping с сохранением порядка.
func (p Params) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, param := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: param.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: param.Value.Raw()},
		)
	}
	return node, nil
}

// scalarText приводит JSON значение к строке параметра.
//
// Строки берутся как есть, числа и bool — в текстовом виде, null — пустая
// строка, объекты и массивы — компактный JSON.
func scalarText(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty value")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	case 'n':
		if string(raw) == "null" {
			return "", nil
		}
	}

	return string(raw), nil
}

// yamlScalarText — то же, что scalarText, для YAML узла.
func yamlScalarText(node *yaml.Node) (string, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			return "", nil
		}
		return node.Value, nil
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
