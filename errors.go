package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrKindMismatch reports an operation against an item of another kind.
	ErrKindMismatch = errors.New("settings: kind mismatch")
	// ErrKeyNotFound reports a strict lookup for a missing key.
	ErrKeyNotFound = errors.New("settings: key not found")
)

// KindMismatchError carries the item key (when known), the operation and both
// kinds involved. It unwraps to ErrKindMismatch.
type KindMismatchError struct {
	Key  string
	Op   string
	Want Kind
	Got  Kind
}

func (e *KindMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Key == "" {
		return fmt.Sprintf("settings: %s on %s item, want %s", e.Op, e.Got, e.Want)
	}
	return fmt.Sprintf("settings: %s %q on %s item, want %s", e.Op, e.Key, e.Got, e.Want)
}

func (e *KindMismatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrKindMismatch
}

func keyNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrKeyNotFound, name)
}
