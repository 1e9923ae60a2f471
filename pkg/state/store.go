package state

import (
	"context"
	"errors"
	"fmt"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/codec"
	"github.com/google/uuid"
)

// Store owns the settings sections of one runtime document. It is not safe for
// concurrent use; the Backend may be.
type Store struct {
	backend  Backend
	cfg      storeConfig
	order    []string
	sections map[string]*settings.Collection
	player   string
	meta     Meta
}

// NewStore builds a store with empty sections. Call Load to populate them.
func NewStore(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("state: backend is required")
	}
	cfg := applyOptions(opts)
	if _, err := cfg.runtime.Identifier(); err != nil {
		return nil, fmt.Errorf("state: runtime ref: %w", err)
	}
	if _, err := cfg.defaults.Identifier(); err != nil {
		return nil, fmt.Errorf("state: defaults ref: %w", err)
	}

	s := &Store{
		backend:  backend,
		cfg:      cfg,
		sections: make(map[string]*settings.Collection, len(cfg.sections)),
	}
	for _, name := range cfg.sections {
		if name == "" || name == codec.PlayerKey {
			return nil, fmt.Errorf("state: invalid section name %q", name)
		}
		if _, dup := s.sections[name]; dup {
			return nil, fmt.Errorf("state: duplicate section %q", name)
		}
		collectionOpts := append([]settings.Option{
			settings.WithName(name),
			settings.WithLogger(cfg.logger),
		}, cfg.collectionOpts...)
		s.sections[name] = settings.NewCollection(collectionOpts...)
		s.order = append(s.order, name)
	}
	return s, nil
}

// Section returns the named section, or nil when it is not configured.
func (s *Store) Section(name string) *settings.Collection {
	return s.sections[name]
}

// Sections lists section names in configuration order.
func (s *Store) Sections() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) ActivePlayer() string {
	return s.player
}

func (s *Store) SetActivePlayer(id string) {
	s.player = id
}

// Meta returns the metadata of the last runtime snapshot read or written.
func (s *Store) Meta() Meta {
	return cloneMeta(s.meta)
}

// Mark checkpoints every section.
func (s *Store) Mark() {
	s.each(func(_ string, c *settings.Collection) { c.MarkAll() })
}

// Restore rolls every section back to its checkpoint.
func (s *Store) Restore() {
	s.each(func(_ string, c *settings.Collection) { c.RestoreAll() })
}

// Touch commits every section without notifying.
func (s *Store) Touch() {
	s.each(func(_ string, c *settings.Collection) { c.TouchAll() })
}

// UndoPendingChanges restores every dirty item in every section.
func (s *Store) UndoPendingChanges() {
	s.each(func(_ string, c *settings.Collection) { c.UndoPendingChanges() })
}

// HasChanges reports whether any section holds a dirty item.
func (s *Store) HasChanges() bool {
	for _, name := range s.order {
		if s.sections[name].HasChanges() {
			return true
		}
	}
	return false
}

// ApplyChanges validates every dirty section, commits the dirty items through
// the notifiers and saves the runtime document. A validation failure leaves
// every section untouched. Notifier errors do not stop the commit; they are
// joined into the returned error together with any save failure.
func (s *Store) ApplyChanges(ctx context.Context) (int, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}

	applied := 0
	var errs []error
	for _, name := range s.order {
		applied += s.sections[name].ApplyChanges(s.sink(ctx, name, &errs))
	}
	if applied > 0 {
		if err := s.Save(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return applied, errors.Join(errs...)
}

// Load reads the runtime document. When it does not exist the defaults are
// read instead and written back as the runtime document.
func (s *Store) Load(ctx context.Context) error {
	doc, meta, ok, err := s.backend.Load(ctx, s.cfg.runtime)
	if err != nil {
		return s.fail(settings.OpLoad, fmt.Errorf("state: load runtime: %w", err))
	}
	if ok {
		s.meta = meta
		s.populate(doc)
		return s.notifySections(ctx, settings.OpLoad, meta.SnapshotID)
	}

	doc, _, ok, err = s.backend.Load(ctx, s.cfg.defaults)
	if err != nil {
		return s.fail(settings.OpLoad, fmt.Errorf("state: load defaults: %w", err))
	}
	if !ok {
		return s.fail(settings.OpLoad, ErrNoSource)
	}
	s.populate(doc)
	if err := s.Save(ctx); err != nil {
		return err
	}
	return s.notifySections(ctx, settings.OpLoad, s.meta.SnapshotID)
}

// Save writes every section and the active player as a new runtime snapshot.
func (s *Store) Save(ctx context.Context) error {
	meta := Meta{
		SnapshotID: uuid.NewString(),
		ETag:       s.meta.ETag,
		UpdatedAt:  s.cfg.now(),
		Extra:      s.meta.Extra,
	}
	saved, err := s.backend.Save(ctx, s.cfg.runtime, s.Document(), meta)
	if err != nil {
		return s.fail(settings.OpSave, fmt.Errorf("state: save runtime: %w", err))
	}
	s.meta = saved
	s.log(settings.LogEvent{Op: settings.OpSave, Count: len(s.order)})
	return nil
}

// ResetToDefaults replaces every section with the defaults document, saves it
// as the runtime document and notifies every setting. It returns the number of
// settings notified.
func (s *Store) ResetToDefaults(ctx context.Context) (int, error) {
	doc, _, ok, err := s.backend.Load(ctx, s.cfg.defaults)
	if err != nil {
		return 0, s.fail(settings.OpReset, fmt.Errorf("state: load defaults: %w", err))
	}
	if !ok {
		return 0, s.fail(settings.OpReset, ErrNoSource)
	}
	s.populate(doc)
	if err := s.Save(ctx); err != nil {
		return 0, err
	}

	notified := 0
	var errs []error
	for _, name := range s.order {
		notified += s.sections[name].ForceApplyChanges(s.sink(ctx, name, &errs))
	}
	if err := s.notifySections(ctx, settings.OpReset, s.meta.SnapshotID); err != nil {
		errs = append(errs, err)
	}
	s.log(settings.LogEvent{Op: settings.OpReset, Count: notified})
	return notified, errors.Join(errs...)
}

// Close saves the runtime document when auto-save is enabled.
func (s *Store) Close(ctx context.Context) error {
	if !s.cfg.autoSave {
		return nil
	}
	return s.Save(ctx)
}

// Document captures the current sections and active player.
func (s *Store) Document() codec.Document {
	doc := codec.Document{
		Player:   s.player,
		Sections: make(map[string][]codec.Record, len(s.order)),
	}
	for _, name := range s.order {
		doc.Sections[name] = codec.Serialize(s.sections[name])
	}
	return doc
}

func (s *Store) populate(doc codec.Document) {
	s.player = doc.Player
	for _, name := range s.order {
		codec.Populate(s.sections[name], doc.Sections[name])
	}
	for name := range doc.Sections {
		if _, known := s.sections[name]; !known {
			s.log(settings.LogEvent{Collection: name, Op: settings.OpDiscard})
		}
	}
	s.log(settings.LogEvent{Op: settings.OpLoad, Count: len(doc.Sections)})
}

func (s *Store) validate() error {
	if s.cfg.validator == nil {
		return nil
	}
	var errs []error
	for _, name := range s.order {
		c := s.sections[name]
		if !c.HasChanges() {
			continue
		}
		if err := s.cfg.validator.Validate(name, c.Snapshot()); err != nil {
			errs = append(errs, err)
			s.log(settings.LogEvent{Collection: name, Op: settings.OpReject, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (s *Store) sink(ctx context.Context, section string, errs *[]error) settings.Sink {
	return settings.SinkFunc(func(name string, item *settings.Item) {
		for _, n := range s.cfg.notifiers {
			if err := n.Notify(ctx, section, name, item); err != nil {
				*errs = append(*errs, fmt.Errorf("state: notify %s/%s: %w", section, name, err))
			}
		}
	})
}

func (s *Store) notifySections(ctx context.Context, op settings.Op, snapshotID string) error {
	var errs []error
	for _, n := range s.cfg.notifiers {
		sn, ok := n.(SectionNotifier)
		if !ok {
			continue
		}
		for _, name := range s.order {
			if err := sn.NotifySection(ctx, name, op, snapshotID); err != nil {
				errs = append(errs, fmt.Errorf("state: notify %s %s: %w", op, name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Store) each(fn func(name string, c *settings.Collection)) {
	for _, name := range s.order {
		fn(name, s.sections[name])
	}
}

func (s *Store) fail(op settings.Op, err error) error {
	s.log(settings.LogEvent{Op: op, Err: err})
	return err
}

func (s *Store) log(event settings.LogEvent) {
	s.cfg.logger.LogChange(event)
}
