package engine

import (
	"fmt"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// NodeKind — вид узла графа.
type NodeKind string

const (
	// NodeStep — обычный шаг workflow.
	NodeStep NodeKind = "step"

	// NodeGroup — объединённые шаги одного типа из параллельного блока.
	NodeGroup NodeKind = "group"

	// NodeConvergence — синтетическая точка схождения параллельных веток.
	NodeConvergence NodeKind = "convergence"
)

// Node — узел графа.
type Node struct {
	// ID — идентификатор узла: имя шага, тип группы или <блок>.join.
	// Занятый ID получает суффикс " (N)".
	ID string

	// Kind — вид узла.
	Kind NodeKind

	// Title — заголовок подписи (исходное имя шага или тип группы).
	// Может отличаться от ID при DuplicateRename.
	Title string

	// StepType — объявленный тип шага (для групп совпадает с Title).
	StepType string

	// Block — имя параллельного блока (для групп и точек схождения).
	Block string

	// Display — режим подписи группы.
	Display DisplayMode

	// Params — параметры шага; для группы в режиме DisplayTable — объединённые.
	Params domain.Params

	// Children — дочерние шаги группы.
	Children []GroupChild
}

// Edge — направленное ребро.
type Edge struct {
	From string
	To   string
}

// Graph — граф workflow, готовый к отрисовке.
//
// Узлы и рёбра хранятся в порядке добавления, чтобы вывод был
// детерминированным. Повторные рёбра и петли не добавляются.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	index map[string]*Node
	edges map[Edge]bool
}

// NewGraph создаёт пустой граф.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]*Node, 0),
		Edges: make([]Edge, 0),
		index: make(map[string]*Node),
		edges: make(map[Edge]bool),
	}
}

// addNode добавляет узел. Узел с таким ID не должен существовать.
func (g *Graph) addNode(node *Node) {
	g.Nodes = append(g.Nodes, node)
	g.index[node.ID] = node
}

// AddEdge добавляет ребро между существующими узлами.
// Петли и дубликаты пропускаются.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return nil
	}
	if _, ok := g.index[from]; !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	if _, ok := g.index[to]; !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}

	e := Edge{From: from, To: to}
	if g.edges[e] {
		return nil
	}
	g.edges[e] = true
	g.Edges = append(g.Edges, e)
	return nil
}

// Node возвращает узел по ID или nil.
func (g *Graph) Node(id string) *Node {
	return g.index[id]
}

// HasEdge проверяет наличие ребра.
func (g *Graph) HasEdge(from, to string) bool {
	return g.edges[Edge{From: from, To: to}]
}

// Size возвращает количество узлов.
func (g *Graph) Size() int {
	return len(g.Nodes)
}

// Successors возвращает ID узлов, в которые ведут рёбра из id.
func (g *Graph) Successors(id string) []string {
	out := make([]string, 0)
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Predecessors возвращает ID узлов, из которых ведут рёбра в id.
func (g *Graph) Predecessors(id string) []string {
	out := make([]string, 0)
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

// Roots возвращает узлы без входящих рёбер (точки входа).
func (g *Graph) Roots() []*Node {
	return g.filter(func(n *Node) bool { return len(g.Predecessors(n.ID)) == 0 })
}

// Sinks возвращает узлы без исходящих рёбер (точки выхода).
func (g *Graph) Sinks() []*Node {
	return g.filter(func(n *Node) bool { return len(g.Successors(n.ID)) == 0 })
}

func (g *Graph) filter(keep func(*Node) bool) []*Node {
	out := make([]*Node, 0)
	for _, n := range g.Nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// TopologicalOrder возвращает узлы в топологическом порядке (алгоритм Кана).
// Среди готовых узлов сохраняется порядок добавления.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		inDegree[e.To]++
	}

	queue := make([]*Node, 0)
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]*Node, 0, len(g.Nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, next := range g.Successors(node.ID) {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, g.index[next])
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, ErrCyclicGraph
	}

	return order, nil
}

// BuildGraph строит граф из документа с уже разрешёнными ссылками.
//
// Верхний уровень workflow обходится автоматом с двумя состояниями:
//   - последовательное: шаг соединяется с предыдущим;
//   - после параллельного блока: следующий шаг принимает рёбра от всех
//     групп блока (fan-in), а предыдущий шаг перед блоком ведёт в каждую
//     группу (fan-out).
//
// Если параллельный блок идёт сразу за другим, или стоит последним,
// его группы замыкаются синтетическим узлом NodeConvergence
// (последний — только без Options.NoTrailingSink). Пустые блоки пропускаются.
func BuildGraph(doc *domain.Document, opts Options) (*Graph, error) {
	if doc == nil {
		return nil, NewValidationError("", "", "document is empty", ErrMalformedDocument)
	}

	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := &graphBuilder{
		graph:    NewGraph(),
		opts:     opts,
		reserved: declaredIDs(doc),
	}

	for i := range doc.Workflow {
		step := &doc.Workflow[i]

		var err error
		if step.IsParallel() {
			err = b.addParallel(step)
		} else {
			err = b.addStep(step)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(b.frontier) > 0 && !opts.NoTrailingSink {
		if _, err := b.converge(); err != nil {
			return nil, err
		}
	}

	return b.graph, nil
}

// graphBuilder — состояние обхода workflow.
type graphBuilder struct {
	graph *Graph
	opts  Options

	// previous — последний последовательный узел.
	previous string

	// frontier — группы последнего параллельного блока, ещё не сведённые.
	frontier []string

	// frontierBlock — имя блока, которому принадлежит frontier.
	frontierBlock string

	// reserved — ID, которые документ объявляет сам: имена шагов и типы групп.
	// Синтетические ID их не занимают.
	reserved map[string]bool
}

// declaredIDs собирает имена последовательных шагов и типы шагов
// параллельных блоков.
func declaredIDs(doc *domain.Document) map[string]bool {
	ids := make(map[string]bool)
	for _, step := range doc.Workflow {
		if !step.IsParallel() {
			ids[step.Name] = true
			continue
		}
		for _, child := range step.Steps {
			ids[child.Type] = true
		}
	}
	return ids
}

// addStep добавляет обычный шаг.
func (b *graphBuilder) addStep(step *domain.Step) error {
	id, err := b.place(&Node{
		ID:       step.Name,
		Kind:     NodeStep,
		Title:    step.Name,
		StepType: step.Type,
		Params:   step.Parameters.Clone(),
	})
	if err != nil {
		return err
	}

	switch {
	case len(b.frontier) > 0:
		// Точка схождения: все группы блока ведут в этот шаг
		for _, from := range b.frontier {
			if err := b.graph.AddEdge(from, id); err != nil {
				return err
			}
		}
		b.frontier = nil
	case b.previous != "":
		if err := b.graph.AddEdge(b.previous, id); err != nil {
			return err
		}
	}

	b.previous = id
	return nil
}

// addParallel добавляет параллельный блок: по узлу на каждую группу.
func (b *graphBuilder) addParallel(step *domain.Step) error {
	groups, err := Consolidate(step.Steps, b.opts.Merge)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	// Два блока подряд: сначала сводим предыдущий
	if len(b.frontier) > 0 {
		join, err := b.converge()
		if err != nil {
			return err
		}
		b.previous = join
	}

	ids := make([]string, 0, len(groups))
	for _, group := range groups {
		node := &Node{
			ID:       group.Type,
			Kind:     NodeGroup,
			Title:    group.Type,
			StepType: group.Type,
			Block:    step.Name,
			Display:  b.opts.Display,
			Children: group.Children,
		}
		if b.opts.Display == DisplayTable {
			node.Params = group.Merged
		}

		id, err := b.place(node)
		if err != nil {
			return err
		}

		if b.previous != "" {
			if err := b.graph.AddEdge(b.previous, id); err != nil {
				return err
			}
		}
		ids = append(ids, id)
	}

	b.frontier = ids
	b.frontierBlock = step.Name
	b.previous = ""
	return nil
}

// converge замыкает frontier синтетическим узлом и возвращает его ID.
func (b *graphBuilder) converge() (string, error) {
	id := b.uniqueID(b.frontierBlock+".join", true)
	b.graph.addNode(&Node{
		ID:    id,
		Kind:  NodeConvergence,
		Block: b.frontierBlock,
	})

	for _, from := range b.frontier {
		if err := b.graph.AddEdge(from, id); err != nil {
			return "", err
		}
	}

	b.frontier = nil
	return id, nil
}

// place добавляет узел с учётом DuplicatePolicy и возвращает итоговый ID.
//
// Один тип может встречаться в нескольких параллельных блоках: повтор
// группы не считается повтором имени шага, и вне DuplicateMerge группа
// получает ID с суффиксом, сохраняя тип в Title.
func (b *graphBuilder) place(node *Node) (string, error) {
	existing := b.graph.Node(node.ID)
	if existing == nil {
		b.graph.addNode(node)
		return node.ID, nil
	}

	switch {
	case b.opts.Duplicates == DuplicateMerge:
		// Как в Graphviz: повторное объявление обновляет подпись
		id := existing.ID
		*existing = *node
		existing.ID = id
		return id, nil

	case b.opts.Duplicates == DuplicateRename,
		node.Kind == NodeGroup && existing.Kind == NodeGroup:
		node.ID = b.uniqueID(node.ID, false)
		b.graph.addNode(node)
		return node.ID, nil

	case node.Kind == NodeGroup:
		return "", NewValidationError(node.Block, "type",
			fmt.Sprintf("step type %q of parallel block collides with step %q", node.StepType, existing.Title),
			ErrDuplicateStepName)

	default:
		return "", NewValidationError(node.Title, "name",
			fmt.Sprintf("duplicate step name %q (conflicts with existing %s)", node.ID, existing.Kind),
			ErrDuplicateStepName)
	}
}

// uniqueID добавляет суффикс " (N)", пока ID занят узлом графа
// или объявлен в документе.
// fresh разрешает вернуть сам id, если он свободен.
func (b *graphBuilder) uniqueID(id string, fresh bool) string {
	taken := func(candidate string) bool {
		return b.graph.Node(candidate) != nil || b.reserved[candidate]
	}

	if fresh && !taken(id) {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", id, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
