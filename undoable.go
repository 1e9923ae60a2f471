package settings

// Scalar enumerates the value kinds an Undoable can hold.
type Scalar interface {
	~bool | ~int64 | ~float64 | ~string
}

// HoldState records whether an Undoable is inside a marked transaction.
type HoldState uint8

const (
	// Committed means the next Assign moves current into previous.
	Committed HoldState = iota
	// Held means a Mark is outstanding; Assign keeps the marked baseline.
	Held
)

func (s HoldState) String() string {
	switch s {
	case Committed:
		return "committed"
	case Held:
		return "held"
	default:
		return "unknown"
	}
}

// Undoable is a single scalar with a shadow baseline and a dirty flag. The
// zero value holds the zero value of T and is clean.
type Undoable[T Scalar] struct {
	current  T
	previous T
	dirty    bool
	state    HoldState
}

// NewUndoable returns a clean value whose current and previous slots both hold
// initial.
func NewUndoable[T Scalar](initial T) Undoable[T] {
	return Undoable[T]{current: initial, previous: initial}
}

// Get returns the current value.
func (u *Undoable[T]) Get() T {
	return u.current
}

// Previous returns the baseline slot. After Touch it may be stale until the
// next Mark or Assign.
func (u *Undoable[T]) Previous() T {
	return u.previous
}

// Dirty reports whether the value differs from its baseline.
func (u *Undoable[T]) Dirty() bool {
	return u.dirty
}

// State reports the transaction hold state.
func (u *Undoable[T]) State() HoldState {
	return u.state
}

// Mark checkpoints the current value as the rollback baseline and holds it
// until the next Touch or Restore.
func (u *Undoable[T]) Mark() {
	u.previous = u.current
	u.dirty = false
	u.state = Held
}

// Restore reverts a dirty value to its baseline. It does nothing when clean.
func (u *Undoable[T]) Restore() {
	if !u.dirty {
		return
	}
	u.current = u.previous
	u.dirty = false
	u.state = Committed
}

// Touch accepts a dirty value as committed without reverting it.
func (u *Undoable[T]) Touch() {
	if !u.dirty {
		return
	}
	u.dirty = false
	u.state = Committed
}

// Assign stores value. Assigning the current value leaves every slot untouched.
func (u *Undoable[T]) Assign(value T) {
	if value == u.current {
		return
	}
	if u.state != Held {
		u.previous = u.current
	}
	u.current = value
	u.dirty = u.current != u.previous
}
