package settings

import (
	"math"
	"testing"
)

func TestUndoableZeroValueIsClean(t *testing.T) {
	var u Undoable[int64]
	if u.Get() != 0 || u.Previous() != 0 {
		t.Fatalf("expected zero slots, got current=%d previous=%d", u.Get(), u.Previous())
	}
	if u.Dirty() {
		t.Fatalf("zero value must be clean")
	}
	if u.State() != Committed {
		t.Fatalf("expected committed state, got %s", u.State())
	}
}

func TestUndoableAssignSameValueStaysClean(t *testing.T) {
	u := NewUndoable("hello")
	u.Assign("hello")
	if u.Dirty() {
		t.Fatalf("assigning the current value must not dirty")
	}

	u.Mark()
	u.Assign("hello")
	if u.Dirty() {
		t.Fatalf("assigning the current value across a hold must not dirty")
	}
}

func TestUndoableAssignSameValueKeepsPendingChange(t *testing.T) {
	u := NewUndoable(int64(3))
	u.Assign(5)
	u.Assign(5)
	if !u.Dirty() {
		t.Fatalf("re-assigning the pending value must keep it dirty")
	}
	if u.Previous() != 3 {
		t.Fatalf("expected previous 3, got %d", u.Previous())
	}
}

func TestUndoableRestoreReturnsToMarkAcrossAssigns(t *testing.T) {
	u := NewUndoable(1.5)
	u.Mark()
	u.Assign(2.5)
	u.Assign(3.5)
	u.Assign(4.5)

	if u.Previous() != 1.5 {
		t.Fatalf("held baseline moved: %v", u.Previous())
	}
	u.Restore()
	if u.Get() != 1.5 {
		t.Fatalf("expected restore to marked value 1.5, got %v", u.Get())
	}
	if u.Dirty() || u.State() != Committed {
		t.Fatalf("restore must clear dirty and hold, got dirty=%v state=%s", u.Dirty(), u.State())
	}
}

func TestUndoableAssignBackToMarkedValueIsClean(t *testing.T) {
	u := NewUndoable(true)
	u.Mark()
	u.Assign(false)
	u.Assign(true)
	if u.Dirty() {
		t.Fatalf("returning to the marked value must be clean")
	}
	if u.State() != Held {
		t.Fatalf("hold must survive until touch or restore, got %s", u.State())
	}
}

func TestUndoableWithoutMarkTracksLastAssign(t *testing.T) {
	u := NewUndoable(int64(0))
	u.Assign(5)
	u.Assign(7)
	u.Restore()
	if u.Get() != 5 {
		t.Fatalf("expected restore to the value before the last assign, got %d", u.Get())
	}
}

func TestUndoableTouchThenRestoreIsNoop(t *testing.T) {
	u := NewUndoable("a")
	u.Mark()
	u.Assign("b")
	u.Touch()
	if u.Dirty() || u.State() != Committed {
		t.Fatalf("touch must clear dirty and hold")
	}
	if u.Previous() != "a" {
		t.Fatalf("touch must leave previous stale, got %q", u.Previous())
	}
	u.Restore()
	if u.Get() != "b" {
		t.Fatalf("restore after touch must be a no-op, got %q", u.Get())
	}
}

func TestUndoableRestoreIsIdempotent(t *testing.T) {
	u := NewUndoable(int64(10))
	u.Assign(20)
	u.Restore()
	u.Restore()
	if u.Get() != 10 || u.Dirty() {
		t.Fatalf("expected 10 and clean, got %d dirty=%v", u.Get(), u.Dirty())
	}
}

func TestUndoableTouchOnCleanKeepsHold(t *testing.T) {
	u := NewUndoable(int64(1))
	u.Mark()
	u.Touch()
	if u.State() != Held {
		t.Fatalf("touch on a clean value must not release the hold")
	}
}

func TestHoldStateString(t *testing.T) {
	cases := map[HoldState]string{
		Committed:    "committed",
		Held:         "held",
		HoldState(9): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestUndoableNaNAlwaysDirties(t *testing.T) {
	u := NewUndoable(math.NaN())
	if u.Dirty() {
		t.Fatalf("new value must be clean")
	}
	u.Assign(math.NaN())
	if !u.Dirty() {
		t.Fatalf("NaN never equals itself, assignment must dirty")
	}
}
