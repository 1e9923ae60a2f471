package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	settings "github.com/goliatone/go-settings"
)

func TestNotifierEmitsAppliedEvent(t *testing.T) {
	capture := &CaptureHook{}
	at := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	notifier := Notifier{
		Emitter: NewEmitter(Hooks{capture}, Config{Enabled: true}),
		ActorID: "p-7",
		Now:     func() time.Time { return at },
	}

	item := settings.FromText("en")
	item.SetText("fr")
	if err := notifier.Notify(context.Background(), "system", "language", item); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	evt := capture.Events[0]
	if evt.ObjectID != "system/language" || evt.ActorID != "p-7" || evt.Channel != DefaultChannel {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if !evt.OccurredAt.Equal(at) || evt.Metadata["value"] != "fr" || evt.Metadata["previous"] != "en" {
		t.Fatalf("unexpected payload: %+v", evt)
	}
}

func TestNotifierDisabledEmitter(t *testing.T) {
	if err := (Notifier{}).Notify(context.Background(), "system", "x", settings.FromBool(true)); err != nil {
		t.Fatalf("nil emitter must be a no-op, got %v", err)
	}
}

func TestSinkWithApplyChanges(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})

	c := settings.NewCollection(settings.WithName("gameplay"))
	c.AddText("difficulty", "normal")
	c.AddBool("hints", true)
	c.AddInt("retries", 3)
	c.MarkAll()
	c.Get("difficulty").SetText("hard")
	c.Get("retries").SetInt(5)

	sink := NewSink(context.Background(), emitter, "gameplay")
	if applied := c.ApplyChanges(sink); applied != 2 {
		t.Fatalf("expected 2 applied, got %d", applied)
	}
	if err := sink.Err(); err != nil {
		t.Fatalf("unexpected sink error: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected two events, got %d", len(capture.Events))
	}
	if capture.Events[0].ObjectID != "gameplay/difficulty" || capture.Events[1].ObjectID != "gameplay/retries" {
		t.Fatalf("unexpected order: %s, %s", capture.Events[0].ObjectID, capture.Events[1].ObjectID)
	}
	if capture.Events[0].Channel != "audit" {
		t.Fatalf("expected configured channel, got %q", capture.Events[0].Channel)
	}
}

func TestSinkCollectsErrors(t *testing.T) {
	boom := errors.New("hook down")
	emitter := NewEmitter(Hooks{&CaptureHook{Err: boom}}, Config{Enabled: true})

	c := settings.NewCollection()
	c.AddInt("a", 1).SetInt(2)
	c.AddInt("b", 1).SetInt(2)

	sink := NewSink(nil, emitter, "system")
	if applied := c.ApplyChanges(sink); applied != 2 {
		t.Fatalf("errors must not interrupt apply, got %d", applied)
	}
	if !errors.Is(sink.Err(), boom) {
		t.Fatalf("expected joined hook error, got %v", sink.Err())
	}
	if c.HasChanges() {
		t.Fatalf("apply must commit despite hook errors")
	}
}

func TestNotifierSectionEvents(t *testing.T) {
	capture := &CaptureHook{}
	notifier := Notifier{
		Emitter: NewEmitter(Hooks{capture}, Config{Enabled: true}),
		ActorID: "p-7",
	}
	ctx := context.Background()

	if err := notifier.NotifySection(ctx, "system", settings.OpLoad, "snap-1"); err != nil {
		t.Fatalf("notify load: %v", err)
	}
	if err := notifier.NotifySection(ctx, "gameplay", settings.OpReset, "snap-2"); err != nil {
		t.Fatalf("notify reset: %v", err)
	}
	if err := notifier.NotifySection(ctx, "system", settings.OpSave, "snap-3"); err != nil {
		t.Fatalf("notify save: %v", err)
	}

	if got := capture.Verbs(); len(got) != 2 || got[0] != VerbSectionLoaded || got[1] != VerbSectionReset {
		t.Fatalf("unexpected verbs %v", got)
	}
	reset := capture.Events[1]
	if reset.ObjectType != ObjectSection || reset.ObjectID != "gameplay" || reset.ActorID != "p-7" {
		t.Fatalf("unexpected reset event: %+v", reset)
	}
	if reset.Metadata["snapshot_id"] != "snap-2" || reset.Metadata["section"] != "gameplay" {
		t.Fatalf("unexpected reset metadata: %+v", reset.Metadata)
	}
}
