package settings

import (
	"errors"
	"sort"
)

// Collection maps unique names to the items it owns. Iteration always follows
// sorted key order. A Collection is not safe for concurrent use.
type Collection struct {
	items map[string]*Item
	cfg   collectionConfig
}

// NewCollection returns an empty collection.
func NewCollection(opts ...Option) *Collection {
	return &Collection{
		items: make(map[string]*Item),
		cfg:   applyOptions(opts),
	}
}

// Name returns the label configured with WithName.
func (c *Collection) Name() string {
	return c.cfg.name
}

// Len returns the number of items.
func (c *Collection) Len() int {
	return len(c.items)
}

// Keys returns every key in sorted order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Each visits items in key order until fn returns false.
func (c *Collection) Each(fn func(name string, item *Item) bool) {
	if fn == nil {
		return
	}
	for _, key := range c.Keys() {
		if !fn(key, c.items[key]) {
			return
		}
	}
}

// Get returns the item stored under name, or nil.
func (c *Collection) Get(name string) *Item {
	return c.items[name]
}

// Lookup is the strict form of Get.
func (c *Collection) Lookup(name string) (*Item, error) {
	item, ok := c.items[name]
	if !ok {
		return nil, keyNotFound(name)
	}
	return item, nil
}

// Add inserts item under name when the key is free. When the key is taken by
// an item of the same kind, the incoming value is copied into the existing
// item; when the kinds differ the existing item is left alone. The incoming
// item is never retained in either case. Add returns the item stored under
// name afterwards.
func (c *Collection) Add(name string, item *Item) *Item {
	if item == nil {
		item = NewItem()
	}
	if c.items == nil {
		c.items = make(map[string]*Item)
	}
	existing, ok := c.items[name]
	if !ok {
		c.items[name] = item
		c.log(LogEvent{Key: name, Op: OpAdd, Kind: item.kind})
		return item
	}
	if existing.IsSameKind(item) {
		existing.CopyFrom(item)
		c.log(LogEvent{Key: name, Op: OpCopy, Kind: existing.kind})
		return existing
	}
	c.log(LogEvent{
		Key:  name,
		Op:   OpDiscard,
		Kind: item.kind,
		Err:  &KindMismatchError{Key: name, Op: "add", Want: existing.kind, Got: item.kind},
	})
	return existing
}

// AddBool adds a bool item.
func (c *Collection) AddBool(name string, value bool) *Item {
	return c.Add(name, FromBool(value))
}

// AddInt adds an int item.
func (c *Collection) AddInt(name string, value int64) *Item {
	return c.Add(name, FromInt(value))
}

// AddFloat adds a float item.
func (c *Collection) AddFloat(name string, value float64) *Item {
	return c.Add(name, FromFloat(value))
}

// AddText adds a text item.
func (c *Collection) AddText(name string, value string) *Item {
	return c.Add(name, FromText(value))
}

func (c *Collection) remove(name string) {
	delete(c.items, name)
}

// read returns the stored value when name holds an item of kind. Otherwise the
// entry is created (or replaced, when the kind differs) holding def.
func read[T Scalar](c *Collection, name string, kind Kind, def T, fresh func(T) *Item, value func(*Item) T) T {
	if existing, ok := c.items[name]; ok {
		if existing.kind == kind {
			return value(existing)
		}
		c.remove(name)
		c.log(LogEvent{
			Key:  name,
			Op:   OpRepair,
			Kind: kind,
			Err:  &KindMismatchError{Key: name, Op: "read", Want: kind, Got: existing.kind},
		})
	}
	c.Add(name, fresh(def))
	return def
}

// ReadBool returns the bool stored under name, repairing or creating the
// entry with def when needed.
func (c *Collection) ReadBool(name string, def bool) bool {
	return read(c, name, KindBool, def, FromBool, (*Item).Bool)
}

// ReadInt returns the int stored under name.
func (c *Collection) ReadInt(name string, def int64) int64 {
	return read(c, name, KindInt, def, FromInt, (*Item).Int)
}

// ReadFloat returns the float stored under name.
func (c *Collection) ReadFloat(name string, def float64) float64 {
	return read(c, name, KindFloat, def, FromFloat, (*Item).Float)
}

// ReadText returns the text stored under name.
func (c *Collection) ReadText(name string, def string) string {
	return read(c, name, KindText, def, FromText, (*Item).Text)
}

// MarkAll checkpoints every item.
func (c *Collection) MarkAll() {
	for _, key := range c.Keys() {
		c.items[key].Mark()
	}
}

// RestoreAll reverts every pending change.
func (c *Collection) RestoreAll() {
	for _, key := range c.Keys() {
		c.items[key].Restore()
	}
}

// TouchAll accepts every pending change without notifying.
func (c *Collection) TouchAll() {
	for _, key := range c.Keys() {
		c.items[key].Touch()
	}
}

// HasChanges reports whether any item is dirty.
func (c *Collection) HasChanges() bool {
	for _, item := range c.items {
		if item.HasChanged() {
			return true
		}
	}
	return false
}

// Changed returns the keys of dirty items in sorted order.
func (c *Collection) Changed() []string {
	var keys []string
	for _, key := range c.Keys() {
		if c.items[key].HasChanged() {
			keys = append(keys, key)
		}
	}
	return keys
}

// ApplyChanges commits pending changes: every dirty item is passed to sink
// once, in key order, and then touched. The dirty set is captured before the
// first notification. A nil sink still commits. It returns the number of
// items applied.
func (c *Collection) ApplyChanges(sink Sink) int {
	dirty := c.entries(func(item *Item) bool { return item.HasChanged() })
	if len(dirty) == 0 {
		return 0
	}
	for _, e := range dirty {
		if sink != nil {
			sink.Apply(e.key, e.item)
		}
		e.item.Touch()
	}
	c.log(LogEvent{Op: OpApply, Count: len(dirty)})
	return len(dirty)
}

// ForceApplyChanges passes every non-empty item to sink whether or not it is
// dirty, then touches it. Used after wholesale reloads such as a reset to
// defaults.
func (c *Collection) ForceApplyChanges(sink Sink) int {
	items := c.entries(func(item *Item) bool { return item.kind != KindEmpty })
	for _, e := range items {
		if sink != nil {
			sink.Apply(e.key, e.item)
		}
		e.item.Touch()
	}
	c.log(LogEvent{Op: OpForce, Count: len(items)})
	return len(items)
}

type entry struct {
	key  string
	item *Item
}

// entries captures the matching items in key order, so sinks that edit the
// collection do not change what is being applied.
func (c *Collection) entries(keep func(*Item) bool) []entry {
	var out []entry
	for _, key := range c.Keys() {
		if item := c.items[key]; keep(item) {
			out = append(out, entry{key: key, item: item})
		}
	}
	return out
}

// UndoPendingChanges restores every item.
func (c *Collection) UndoPendingChanges() {
	dirty := len(c.Changed())
	c.RestoreAll()
	if dirty > 0 {
		c.log(LogEvent{Op: OpUndo, Count: dirty})
	}
}

// UpdateFrom merges source into c. Missing keys gain a zero item of the
// source kind which then takes the source value, so it is dirty exactly when
// that value is not the zero value. Shared keys of the same kind copy the
// source value. Shared keys of different kinds follow the KindConflict
// policy; under KindConflictReject the skipped keys are returned as joined
// *KindMismatchError values.
func (c *Collection) UpdateFrom(source *Collection) error {
	if source == nil || source == c {
		return nil
	}
	if c.items == nil {
		c.items = make(map[string]*Item)
	}
	var errs []error
	for _, key := range source.Keys() {
		incoming := source.items[key]
		existing, ok := c.items[key]
		switch {
		case !ok:
			item := newZeroItem(incoming.kind)
			item.CopyFrom(incoming)
			c.items[key] = item
			c.log(LogEvent{Key: key, Op: OpMerge, Kind: item.kind})
		case existing.IsSameKind(incoming):
			existing.CopyFrom(incoming)
		case c.cfg.conflict == KindConflictReject:
			err := &KindMismatchError{Key: key, Op: "update", Want: existing.kind, Got: incoming.kind}
			errs = append(errs, err)
			c.log(LogEvent{Key: key, Op: OpReject, Kind: incoming.kind, Err: err})
		default:
			item := replacing(existing, incoming)
			c.items[key] = item
			c.log(LogEvent{Key: key, Op: OpReplace, Kind: item.kind})
		}
	}
	return errors.Join(errs...)
}

// Clear drops every item.
func (c *Collection) Clear() {
	c.items = make(map[string]*Item)
}

// Snapshot returns the current value of every non-empty item keyed by name.
func (c *Collection) Snapshot() map[string]any {
	out := make(map[string]any, len(c.items))
	for key, item := range c.items {
		if item.kind == KindEmpty {
			continue
		}
		out[key] = item.Value()
	}
	return out
}

func (c *Collection) log(event LogEvent) {
	if c.cfg.logger == nil {
		return
	}
	event.Collection = c.cfg.name
	c.cfg.logger.LogChange(event)
}
