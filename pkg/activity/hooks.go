// Package activity publishes committed settings changes as activity events.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event is one settings activity record. Verb is one of the settings.* verbs.
// ObjectType tells a single setting ("<section>/<key>" id) from a whole
// section (section name id). Actor, user and tenant identify who committed the
// change and stay plain strings.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and the setting or section it
// is about.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// Section returns the section the event belongs to.
func (e Event) Section() string {
	if e.ObjectType == ObjectSection {
		return e.ObjectID
	}
	section, _, found := strings.Cut(e.ObjectID, "/")
	if !found {
		return ""
	}
	return section
}

// Key returns the setting key of a setting event, or "" for a section event.
func (e Event) Key() string {
	if e.ObjectType != ObjectSetting {
		return ""
	}
	if _, key, found := strings.Cut(e.ObjectID, "/"); found {
		return key
	}
	return e.ObjectID
}

// Hook consumes settings events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook. A nil HookFunc ignores every event.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers each event to every member in order.
type Hooks []Hook

// Notify normalizes event once and hands the same copy to each hook. Invalid
// events are dropped silently. A failing hook does not stop the others and
// the failures come back joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	errs := make([]error, 0, len(h))
	for _, hook := range h {
		if hook != nil {
			errs = append(errs, hook.Notify(ctx, event))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent returns event with identifiers trimmed, its own copy of the
// metadata and OccurredAt set to now when missing.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{
		&event.Verb, &event.ActorID, &event.UserID, &event.TenantID,
		&event.ObjectType, &event.ObjectID, &event.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	event.Metadata = cloneMap(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}
