package engine

import (
	"fmt"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// Result — результат компиляции.
type Result struct {
	// Graph — граф для отрисовки.
	Graph *Graph

	// Issues — неразрешённые ссылки (в нестрогом режиме).
	// Всегда не nil.
	Issues []domain.ValidationIssue

	// Resolved — документ с подставленными значениями параметров.
	Resolved *domain.Document
}

// Valid — true, если все ссылки разрешены.
func (r *Result) Valid() bool {
	return len(r.Issues) == 0
}

// Compiler — фасад: проверка структуры, проверка ссылок,
// разрешение параметров и построение графа.
//
// Compiler не хранит изменяемого состояния и безопасен
// для одновременного использования из нескольких горутин.
type Compiler struct {
	opts Options
}

// NewCompiler создаёт компилятор. Опции проверяются сразу.
func NewCompiler(opts Options) (*Compiler, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Compiler{opts: opts}, nil
}

// Options возвращает настройки компилятора.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile компилирует разобранный документ. Входной документ не изменяется.
//
// В strict режиме неразрешённые ссылки возвращаются как *ReferenceError
// (errors.Is(err, ErrUndefinedParameter) == true).
func (c *Compiler) Compile(doc *domain.Document) (*Result, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	issues := ValidateReferences(doc)
	if c.opts.Strict && len(issues) > 0 {
		return nil, &ReferenceError{Issues: issues}
	}

	resolved := Resolve(doc)

	graph, err := BuildGraph(resolved, c.opts)
	if err != nil {
		return nil, err
	}

	// Цикл возможен только при слиянии одноимённых узлов
	if c.opts.Duplicates == DuplicateMerge {
		if _, err := graph.TopologicalOrder(); err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}
	}

	return &Result{
		Graph:    graph,
		Issues:   issues,
		Resolved: resolved,
	}, nil
}

// CompileBytes разбирает JSON или YAML документ и компилирует его.
func (c *Compiler) CompileBytes(data []byte, syntax Syntax) (*Result, error) {
	doc, err := Parse(data, syntax)
	if err != nil {
		return nil, err
	}
	return c.Compile(doc)
}

// Compile компилирует документ с указанными опциями.
func Compile(doc *domain.Document, opts Options) (*Result, error) {
	c, err := NewCompiler(opts)
	if err != nil {
		return nil, err
	}
	return c.Compile(doc)
}
