package activity

import (
	"context"
	"errors"
	"time"

	settings "github.com/goliatone/go-settings"
)

// Notifier turns committed settings into settings.applied events. Its Notify
// method matches the store notifier contract.
type Notifier struct {
	Emitter  *Emitter
	ActorID  string
	UserID   string
	TenantID string
	Now      func() time.Time
}

// Notify emits one event for the committed item.
func (n Notifier) Notify(ctx context.Context, section, name string, item *settings.Item) error {
	if !n.Emitter.Enabled() {
		return nil
	}
	return n.Emitter.Emit(ctx, BuildSettingAppliedEvent(n.stamp(ItemInput(section, name, item))))
}

// NotifySection emits settings.loaded for settings.OpLoad and settings.reset
// for settings.OpReset. Other ops are ignored.
func (n Notifier) NotifySection(ctx context.Context, section string, op settings.Op, snapshotID string) error {
	if !n.Emitter.Enabled() {
		return nil
	}
	input := n.stamp(SettingEventInput{Section: section, SnapshotID: snapshotID})
	switch op {
	case settings.OpLoad:
		return n.Emitter.Emit(ctx, BuildSectionLoadedEvent(input))
	case settings.OpReset:
		return n.Emitter.Emit(ctx, BuildSectionResetEvent(input))
	default:
		return nil
	}
}

func (n Notifier) stamp(input SettingEventInput) SettingEventInput {
	input.ActorID = n.ActorID
	input.UserID = n.UserID
	input.TenantID = n.TenantID
	if n.Now != nil {
		input.OccurredAt = n.Now()
	}
	return input
}

// Sink adapts a Notifier to settings.Sink for direct use with
// Collection.ApplyChanges. Errors are collected rather than interrupting the
// apply loop.
type Sink struct {
	ctx      context.Context
	notifier Notifier
	section  string
	errs     []error
}

// NewSink emits through emitter for items of section.
func NewSink(ctx context.Context, emitter *Emitter, section string) *Sink {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Sink{ctx: ctx, notifier: Notifier{Emitter: emitter}, section: section}
}

// Apply implements settings.Sink.
func (s *Sink) Apply(name string, item *settings.Item) {
	if err := s.notifier.Notify(s.ctx, s.section, name, item); err != nil {
		s.errs = append(s.errs, err)
	}
}

// Err joins every error seen so far.
func (s *Sink) Err() error {
	return errors.Join(s.errs...)
}
