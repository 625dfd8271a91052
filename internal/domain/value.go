package domain

import (
	"encoding/json"
	"strings"
)

// ReferencePrefix — префикс ссылки на параметр верхнего уровня документа.
const ReferencePrefix = "$.parameters."

// ValueKind — вид значения параметра шага.
type ValueKind int

const (
	// ValueLiteral — обычное строковое значение.
	ValueLiteral ValueKind = iota

	// ValueReference — ссылка вида $.parameters.<name>.
	ValueReference
)

// Value — значение параметра шага: литерал или ссылка на параметр документа.
//
// Разбирается один раз на границе документа (ParseValue), дальше компоненты
// работают с типизированным значением без повторных проверок префикса.
type Value struct {
	kind ValueKind
	text string // литерал или имя параметра для ссылки
}

// Literal создаёт литеральное значение.
func Literal(s string) Value {
	return Value{kind: ValueLiteral, text: s}
}

// Reference создаёт ссылку на параметр документа.
func Reference(name string) Value {
	return Value{kind: ValueReference, text: name}
}

// ParseValue разбирает строку из документа.
//
// Ссылкой считается только строка целиком вида $.parameters.<name>, где name
// непустое и не содержит точек. Всё остальное — литерал (подстановки внутри
// строки не поддерживаются). Строка с префиксом, но с пустым или составным
// именем ($.parameters.a.b) остаётся литералом, который IsMalformedReference
// отличает от обычного текста.
func ParseValue(s string) Value {
	name, ok := strings.CutPrefix(s, ReferencePrefix)
	if !ok || name == "" || strings.Contains(name, ".") {
		return Literal(s)
	}
	return Reference(name)
}

// Kind возвращает вид значения.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsReference — true для ссылки.
func (v Value) IsReference() bool {
	return v.kind == ValueReference
}

// IsMalformedReference — true для литерала, который начинается с префикса
// ссылки, но не является ссылкой.
func (v Value) IsMalformedReference() bool {
	return v.kind == ValueLiteral && strings.HasPrefix(v.text, ReferencePrefix)
}

// Name возвращает имя параметра для ссылки и пустую строку для литерала.
func (v Value) Name() string {
	if v.kind != ValueReference {
		return ""
	}
	return v.text
}

// Raw возвращает значение в том виде, в каком оно записано в документе.
func (v Value) Raw() string {
	if v.kind == ValueReference {
		return ReferencePrefix + v.text
	}
	return v.text
}

// Equal сравнивает два значения (используется и go-cmp).
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.text == other.text
}

// String реализует fmt.Stringer.
func (v Value) String() string {
	return v.Raw()
}

// MarshalJSON сериализует значение в исходную строковую форму.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// UnmarshalJSON принимает любое скалярное JSON значение.
func (v *Value) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	*v = ParseValue(text)
	return nil
}
