package engine

import (
	"fmt"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// GroupChild — дочерний шаг внутри группы.
type GroupChild struct {
	Name       string
	Parameters domain.Params
}

// ConsolidatedGroup — шаги одного типа из параллельного блока,
// показываемые одним узлом.
type ConsolidatedGroup struct {
	// Type — общий тип шагов, идентификатор группы.
	Type string

	// Children — шаги группы в исходном порядке, каждый со своими параметрами.
	Children []GroupChild

	// Merged — объединённая таблица параметров (по MergePolicy).
	Merged domain.Params
}

// Consolidate группирует детей параллельного блока по типу.
//
// Группы идут в порядке первого появления типа. Вложенные параллельные
// блоки разворачиваются: их дети участвуют в группировке наравне с
// остальными. Merged собирается по policy: при MergeLastWriteWins
// позднее значение ключа заменяет раннее, при MergeRejectConflict
// расхождение значений даёт ErrParameterConflict.
func Consolidate(children []domain.Step, policy MergePolicy) ([]ConsolidatedGroup, error) {
	c := &consolidator{
		policy: policy,
		index:  make(map[string]int),
		groups: make([]ConsolidatedGroup, 0),
	}

	if err := c.add(children); err != nil {
		return nil, err
	}

	return c.groups, nil
}

type consolidator struct {
	policy MergePolicy
	index  map[string]int // тип → позиция группы
	groups []ConsolidatedGroup
}

func (c *consolidator) add(children []domain.Step) error {
	for i := range children {
		child := &children[i]

		if child.IsParallel() {
			if err := c.add(child.Steps); err != nil {
				return err
			}
			continue
		}

		pos, ok := c.index[child.Type]
		if !ok {
			pos = len(c.groups)
			c.index[child.Type] = pos
			c.groups = append(c.groups, ConsolidatedGroup{Type: child.Type})
		}
		group := &c.groups[pos]

		group.Children = append(group.Children, GroupChild{
			Name:       child.Name,
			Parameters: child.Parameters.Clone(),
		})

		for _, param := range child.Parameters {
			if prev, exists := group.Merged.Get(param.Key); exists &&
				c.policy == MergeRejectConflict && !prev.Equal(param.Value) {
				return NewValidationError(child.Name, "parameters",
					fmt.Sprintf("parameter %q of type %q: %q conflicts with %q",
						param.Key, child.Type, param.Value.Raw(), prev.Raw()),
					ErrParameterConflict)
			}
			group.Merged.Set(param.Key, param.Value)
		}
	}

	return nil
}
