package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"section": "system"}
	evt := Event{
		Verb:       " settings.applied ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " setting ",
		ObjectID:   " system/audio.volume ",
		Channel:    " settings ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "settings.applied" || got.ObjectType != "setting" || got.ObjectID != "system/audio.volume" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "settings" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["section"] = "changed"
	if evt.Metadata["section"] != "system" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestEventSectionAndKey(t *testing.T) {
	applied := BuildSettingAppliedEvent(SettingEventInput{Section: "system", Key: "audio.volume"})
	if applied.Section() != "system" || applied.Key() != "audio.volume" {
		t.Fatalf("unexpected setting coordinates %q %q", applied.Section(), applied.Key())
	}

	reset := BuildSectionResetEvent(SettingEventInput{Section: "gameplay"})
	if reset.Section() != "gameplay" || reset.Key() != "" {
		t.Fatalf("unexpected section coordinates %q %q", reset.Section(), reset.Key())
	}

	bare := Event{ObjectType: ObjectSetting, ObjectID: "hints"}
	if bare.Section() != "" || bare.Key() != "hints" {
		t.Fatalf("unexpected bare coordinates %q %q", bare.Section(), bare.Key())
	}
}

func TestHooksNotifyWithoutHooks(t *testing.T) {
	var hooks Hooks
	if err := hooks.Notify(context.Background(), Event{Verb: VerbSettingApplied, ObjectType: ObjectSetting, ObjectID: "system/x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHooksNotifyDropsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	for _, evt := range []Event{
		{},
		{Verb: "settings.applied", ObjectType: "setting"},
		{Verb: "  ", ObjectType: "setting", ObjectID: "system/x"},
	} {
		if err := hooks.Notify(context.Background(), evt); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(_ context.Context, _ Event) error { return boom1 }),
		nil,
		HookFunc(nil),
		HookFunc(func(_ context.Context, _ Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "settings.applied", ObjectType: "setting", ObjectID: "system/x"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	evt := Event{Verb: "settings.applied", ObjectType: "setting", ObjectID: "system/x"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("emitter without hooks must be disabled")
	}
	var nilEmitter *Emitter
	if nilEmitter.Enabled() || nilEmitter.Channel() != DefaultChannel {
		t.Fatalf("nil emitter must be inert")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: " "})
	if !enabled.Enabled() {
		t.Fatalf("expected emitter to be enabled")
	}
	if err := enabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       "settings.applied",
		ObjectType: "setting",
		ObjectID:   "system/x",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", capture.Events[0].Channel)
	}
	if !capture.Events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != "settings.applied" {
		t.Fatalf("unexpected verbs %v", verbs)
	}
}
