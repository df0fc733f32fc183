package evaluator

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"

	"its-hmny.dev/perchance/pkg/compiler"
)

// ValueKind tags which field of Value is meaningful. Every runtime value a
// generator can produce funnels down to one of these; the evaluator's
// expression/property/method code is one big switch on Kind, the same
// dispatch-by-tag idiom pkg/jack/lowering.go uses for its Statement and
// Expression interfaces.
type ValueKind string

const (
	ValText              ValueKind = "text"
	ValListRef           ValueKind = "listRef"
	ValListInstance      ValueKind = "listInstance"
	ValItemInstance      ValueKind = "itemInstance"
	ValArray             ValueKind = "array"
	ValConsumableList    ValueKind = "consumableList"
	ValImportedGenerator ValueKind = "importedGenerator"
)

// Value is the tagged union every expression evaluates to. List- and
// import-backed values are resolved lazily: a value doesn't draw a random
// item until something actually stringifies it, so chains such as
// `animal.selectOne()` or `animal.selectMany(3)` act on the list itself
// while a bare `[animal]` in content performs one implicit selection.
// Assignment is the exception: `x = animal` draws an item at once (see
// selectIfBareList), and every later read of x yields that same item.
type Value struct {
	Kind ValueKind

	Text string // ValText, and the rendered form of ValItemInstance

	ListName string                 // ValListRef
	List     *compiler.CompiledList // ValListRef (once resolved), ValListInstance

	Item *compiler.CompiledItem // ValItemInstance

	Array []Value // ValArray

	Consumable *ConsumableList // ValConsumableList

	ImportName string // ValImportedGenerator
}

// ConsumableState tracks whether a ConsumableList still has unconsumed
// items.
type ConsumableState string

const (
	ConsumableActive    ConsumableState = "active"
	ConsumableExhausted ConsumableState = "exhausted"
)

// ConsumableList is a list instance that hands out each item at most once.
// Remaining indices are tracked in a bitset rather than a slice of ints,
// since "set of small integers with fast random-pick-and-clear" is exactly
// what a bitset is for.
type ConsumableList struct {
	ID        string
	List      *compiler.CompiledList
	Remaining *bitset.BitSet
	Total     uint
	State     ConsumableState
}

// NewConsumableList snapshots list's items as the full remaining set.
func NewConsumableList(list *compiler.CompiledList) *ConsumableList {
	n := uint(len(list.Items))
	bs := bitset.New(n)
	for i := uint(0); i < n; i++ {
		bs.Set(i)
	}
	state := ConsumableActive
	if n == 0 {
		state = ConsumableExhausted
	}
	return &ConsumableList{ID: uuid.NewString(), List: list, Remaining: bs, Total: n, State: state}
}

// ConsumeRandom draws a uniformly random remaining index and clears it.
// Returns ok=false once the list is exhausted.
func (c *ConsumableList) ConsumeRandom(rng *rand.Rand) (int, bool) {
	if c.State == ConsumableExhausted {
		return 0, false
	}
	count := c.Remaining.Count()
	if count == 0 {
		c.State = ConsumableExhausted
		return 0, false
	}
	target := uint(rng.Intn(int(count)))
	var pos uint
	idx, found := uint(0), false
	for i, e := c.Remaining.NextSet(0); e; i, e = c.Remaining.NextSet(i + 1) {
		if pos == target {
			idx, found = i, true
			break
		}
		pos++
	}
	if !found {
		c.State = ConsumableExhausted
		return 0, false
	}
	c.Remaining.Clear(idx)
	if c.Remaining.Count() == 0 {
		c.State = ConsumableExhausted
	}
	return int(idx), true
}
