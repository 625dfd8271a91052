package engine

import "fmt"

// DuplicatePolicy — что делать, если два узла получают одинаковый идентификатор.
type DuplicatePolicy string

const (
	// DuplicateFail — вернуть ErrDuplicateStepName (по умолчанию).
	DuplicateFail DuplicatePolicy = "fail"

	// DuplicateMerge — слить узлы в один (поведение strict digraph в Graphviz).
	DuplicateMerge DuplicatePolicy = "merge"

	// DuplicateRename — добавить к идентификатору суффикс " (2)", " (3)", ...
	DuplicateRename DuplicatePolicy = "rename"
)

// MergePolicy — как объединяются параметры шагов одного типа внутри параллельного блока.
type MergePolicy string

const (
	// MergeLastWriteWins — значение более позднего шага заменяет раннее.
	// Теряет данные при совпадении ключей, это ожидаемое поведение.
	MergeLastWriteWins MergePolicy = "last-write-wins"

	// MergeRejectConflict — разные значения одного ключа дают ErrParameterConflict.
	MergeRejectConflict MergePolicy = "reject"
)

// DisplayMode — как подписывается узел группы.
type DisplayMode string

const (
	// DisplayList — по строке на каждый дочерний шаг с его параметрами (по умолчанию).
	DisplayList DisplayMode = "list"

	// DisplayTable — одна объединённая таблица параметров на тип.
	DisplayTable DisplayMode = "table"
)

// Options — настройки компиляции.
// Нулевое значение эквивалентно DefaultOptions().
type Options struct {
	// Strict — неразрешённые ссылки становятся ошибкой.
	Strict bool

	// Duplicates — политика для совпадающих идентификаторов узлов.
	Duplicates DuplicatePolicy

	// Merge — политика объединения параметров в группе.
	Merge MergePolicy

	// Display — режим подписи групп.
	Display DisplayMode

	// NoTrailingSink — не добавлять узел схождения после последнего
	// параллельного блока (граф может иметь несколько выходов).
	NoTrailingSink bool
}

// DefaultOptions возвращает настройки по умолчанию.
func DefaultOptions() Options {
	return Options{
		Duplicates: DuplicateFail,
		Merge:      MergeLastWriteWins,
		Display:    DisplayList,
	}
}

// withDefaults заполняет пустые поля значениями по умолчанию.
func (o Options) withDefaults() Options {
	if o.Duplicates == "" {
		o.Duplicates = DuplicateFail
	}
	if o.Merge == "" {
		o.Merge = MergeLastWriteWins
	}
	if o.Display == "" {
		o.Display = DisplayList
	}
	return o
}

// Validate проверяет значения опций.
func (o Options) Validate() error {
	o = o.withDefaults()

	switch o.Duplicates {
	case DuplicateFail, DuplicateMerge, DuplicateRename:
	default:
		return fmt.Errorf("%w: duplicates=%q", ErrUnknownOption, o.Duplicates)
	}

	switch o.Merge {
	case MergeLastWriteWins, MergeRejectConflict:
	default:
		return fmt.Errorf("%w: merge=%q", ErrUnknownOption, o.Merge)
	}

	switch o.Display {
	case DisplayList, DisplayTable:
	default:
		return fmt.Errorf("%w: display=%q", ErrUnknownOption, o.Display)
	}

	return nil
}

// ParseDuplicatePolicy разбирает строковое значение политики.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case DuplicateFail, DuplicateMerge, DuplicateRename:
		return p, nil
	case "":
		return DuplicateFail, nil
	default:
		return "", fmt.Errorf("%w: duplicates=%q (want fail, merge or rename)", ErrUnknownOption, s)
	}
}

// ParseMergePolicy разбирает строковое значение политики объединения.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(s); p {
	case MergeLastWriteWins, MergeRejectConflict:
		return p, nil
	case "":
		return MergeLastWriteWins, nil
	default:
		return "", fmt.Errorf("%w: merge=%q (want last-write-wins or reject)", ErrUnknownOption, s)
	}
}

// ParseDisplayMode разбирает режим подписи групп.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch m := DisplayMode(s); m {
	case DisplayList, DisplayTable:
		return m, nil
	case "":
		return DisplayList, nil
	default:
		return "", fmt.Errorf("%w: display=%q (want list or table)", ErrUnknownOption, s)
	}
}
