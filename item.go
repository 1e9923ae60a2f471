package settings

import "fmt"

// Item is one setting: a kind tag plus exactly one Undoable slot matching that
// kind. Empty items carry no slot.
type Item struct {
	kind    Kind
	changed bool

	// displaced is the item of another kind this one replaced during a merge.
	// It is what Restore brings back.
	displaced *Item

	b *Undoable[bool]
	i *Undoable[int64]
	f *Undoable[float64]
	s *Undoable[string]
}

type undoer interface {
	Mark()
	Restore()
	Touch()
	Dirty() bool
}

// NewItem returns an empty item.
func NewItem() *Item {
	return &Item{kind: KindEmpty}
}

// FromBool returns a clean bool item holding value.
func FromBool(value bool) *Item {
	u := NewUndoable(value)
	return &Item{kind: KindBool, b: &u}
}

// FromInt returns a clean int item holding value.
func FromInt(value int64) *Item {
	u := NewUndoable(value)
	return &Item{kind: KindInt, i: &u}
}

// FromFloat returns a clean float item holding value.
func FromFloat(value float64) *Item {
	u := NewUndoable(value)
	return &Item{kind: KindFloat, f: &u}
}

// FromText returns a clean text item holding value.
func FromText(value string) *Item {
	u := NewUndoable(value)
	return &Item{kind: KindText, s: &u}
}

// newZeroItem builds a clean item of kind holding the zero value.
func newZeroItem(kind Kind) *Item {
	switch kind {
	case KindBool:
		return FromBool(false)
	case KindInt:
		return FromInt(0)
	case KindFloat:
		return FromFloat(0)
	case KindText:
		return FromText("")
	default:
		return NewItem()
	}
}

// replacing builds an item of incoming's kind holding its value that stands in
// for existing. It is always changed, whatever the value, until touched or
// restored.
func replacing(existing, incoming *Item) *Item {
	item := newZeroItem(incoming.Kind())
	item.CopyFrom(incoming)
	item.displaced = existing
	item.changed = true
	return item
}

// pending reports whether the item differs from its baseline. A replacement
// stays pending until touched or restored.
func (it *Item) pending(u undoer) bool {
	return it.displaced != nil || u.Dirty()
}

func (it *Item) slot() undoer {
	switch it.kind {
	case KindBool:
		return it.b
	case KindInt:
		return it.i
	case KindFloat:
		return it.f
	case KindText:
		return it.s
	default:
		return nil
	}
}

// Kind returns the item's fixed kind.
func (it *Item) Kind() Kind {
	if it == nil {
		return KindEmpty
	}
	return it.kind
}

// IsSameKind reports whether other carries the same kind.
func (it *Item) IsSameKind(other *Item) bool {
	if it == nil || other == nil {
		return false
	}
	return it.kind == other.kind
}

// HasChanged reports the item-level dirty flag.
func (it *Item) HasChanged() bool {
	return it != nil && it.changed
}

// Mark checkpoints the value. The item-level flag is cleared unconditionally.
func (it *Item) Mark() {
	if u := it.slot(); u != nil {
		u.Mark()
	}
	it.displaced = nil
	it.changed = false
}

// Restore reverts a pending change. A kind replacement is undone first by
// swapping the displaced item back in place, then its own pending change is
// reverted.
func (it *Item) Restore() {
	if prev := it.displaced; prev != nil {
		*it = *prev
		it.Restore()
		return
	}
	if u := it.slot(); u != nil {
		u.Restore()
		it.changed = u.Dirty()
		return
	}
	it.changed = false
}

// Touch accepts a pending change as committed.
func (it *Item) Touch() {
	it.displaced = nil
	if u := it.slot(); u != nil {
		u.Touch()
		it.changed = u.Dirty()
		return
	}
	it.changed = false
}

// CopyFrom assigns other's current value when both items share a kind and
// does nothing otherwise.
func (it *Item) CopyFrom(other *Item) {
	if !it.IsSameKind(other) || it == other {
		return
	}
	switch it.kind {
	case KindBool:
		it.b.Assign(other.b.Get())
	case KindInt:
		it.i.Assign(other.i.Get())
	case KindFloat:
		it.f.Assign(other.f.Get())
	case KindText:
		it.s.Assign(other.s.Get())
	default:
		return
	}
	it.changed = it.pending(it.slot())
}

// Value returns the current value as bool, int64, float64 or string, or nil
// for an empty item.
func (it *Item) Value() any {
	if it == nil {
		return nil
	}
	switch it.kind {
	case KindBool:
		return it.b.Get()
	case KindInt:
		return it.i.Get()
	case KindFloat:
		return it.f.Get()
	case KindText:
		return it.s.Get()
	default:
		return nil
	}
}

// Previous returns the baseline slot, or nil for an empty item. After a kind
// replacement it returns the displaced item's value.
func (it *Item) Previous() any {
	if it == nil {
		return nil
	}
	if it.displaced != nil {
		return it.displaced.Value()
	}
	switch it.kind {
	case KindBool:
		return it.b.Previous()
	case KindInt:
		return it.i.Previous()
	case KindFloat:
		return it.f.Previous()
	case KindText:
		return it.s.Previous()
	default:
		return nil
	}
}

func (it *Item) String() string {
	if it == nil || it.kind == KindEmpty {
		return "empty"
	}
	return fmt.Sprintf("%s(%v)", it.kind, it.Value())
}

func (it *Item) mustBe(want Kind, op string) {
	if it.Kind() != want {
		panic(&KindMismatchError{Op: op, Want: want, Got: it.Kind()})
	}
}

// Bool returns the value of a bool item. It panics with *KindMismatchError on
// any other kind.
func (it *Item) Bool() bool {
	it.mustBe(KindBool, "Bool")
	return it.b.Get()
}

// SetBool assigns the value of a bool item.
func (it *Item) SetBool(value bool) {
	it.mustBe(KindBool, "SetBool")
	it.b.Assign(value)
	it.changed = it.pending(it.b)
}

// Int returns the value of an int item.
func (it *Item) Int() int64 {
	it.mustBe(KindInt, "Int")
	return it.i.Get()
}

// SetInt assigns the value of an int item.
func (it *Item) SetInt(value int64) {
	it.mustBe(KindInt, "SetInt")
	it.i.Assign(value)
	it.changed = it.pending(it.i)
}

// Float returns the value of a float item.
func (it *Item) Float() float64 {
	it.mustBe(KindFloat, "Float")
	return it.f.Get()
}

// SetFloat assigns the value of a float item.
func (it *Item) SetFloat(value float64) {
	it.mustBe(KindFloat, "SetFloat")
	it.f.Assign(value)
	it.changed = it.pending(it.f)
}

// Text returns the value of a text item.
func (it *Item) Text() string {
	it.mustBe(KindText, "Text")
	return it.s.Get()
}

// SetText assigns the value of a text item.
func (it *Item) SetText(value string) {
	it.mustBe(KindText, "SetText")
	it.s.Assign(value)
	it.changed = it.pending(it.s)
}
