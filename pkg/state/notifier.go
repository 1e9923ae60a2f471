package state

import (
	"context"

	settings "github.com/goliatone/go-settings"
)

// Notifier receives every setting the store commits.
type Notifier interface {
	Notify(ctx context.Context, section, name string, item *settings.Item) error
}

// NotifierFunc allows plain functions to satisfy Notifier.
type NotifierFunc func(ctx context.Context, section, name string, item *settings.Item) error

func (fn NotifierFunc) Notify(ctx context.Context, section, name string, item *settings.Item) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, section, name, item)
}

// SectionNotifier is implemented by notifiers that also want section-wide
// events. op is settings.OpLoad or settings.OpReset.
type SectionNotifier interface {
	NotifySection(ctx context.Context, section string, op settings.Op, snapshotID string) error
}

// SinkNotifier forwards commits to a plain settings.Sink.
func SinkNotifier(sink settings.Sink) Notifier {
	return NotifierFunc(func(_ context.Context, _ string, name string, item *settings.Item) error {
		if sink != nil {
			sink.Apply(name, item)
		}
		return nil
	})
}

// Validator checks the staged values of a section before they are committed.
type Validator interface {
	Validate(section string, values map[string]any) error
}
