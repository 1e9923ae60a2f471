package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-settings/pkg/codec"
)

// MemoryBackend keeps documents in memory, encoded as JSON so callers never
// share state with it. Records are keyed by Ref.Identifier(). A Save carrying
// an ETag must match the stored one.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	version int
	now     func() time.Time
}

type memoryRecord struct {
	raw  []byte
	meta Meta
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: map[string]memoryRecord{}, now: time.Now}
}

func (b *MemoryBackend) Load(_ context.Context, ref Ref) (codec.Document, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return codec.Document{}, Meta{}, false, err
	}

	b.mu.RLock()
	record, ok := b.records[key]
	b.mu.RUnlock()
	if !ok {
		return codec.Document{}, Meta{}, false, nil
	}
	doc, err := codec.UnmarshalDocument(record.raw)
	if err != nil {
		return codec.Document{}, Meta{}, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return doc, cloneMeta(record.meta), true, nil
}

func (b *MemoryBackend) Save(_ context.Context, ref Ref, doc codec.Document, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	raw, err := codec.MarshalDocument(doc)
	if err != nil {
		return Meta{}, fmt.Errorf("encode %q: %w", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	existing, ok := b.records[key]
	if ok && meta.ETag != "" && existing.meta.ETag != meta.ETag {
		return Meta{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, existing.meta.ETag)
	}

	b.version++
	saved := mergeMeta(existing.meta, meta)
	saved.ETag = fmt.Sprintf("v%d", b.version)
	if meta.UpdatedAt.IsZero() {
		saved.UpdatedAt = b.now()
	}
	b.records[key] = memoryRecord{raw: raw, meta: cloneMeta(saved)}
	return cloneMeta(saved), nil
}

// Raw returns the encoded document stored under ref.
func (b *MemoryBackend) Raw(ref Ref) ([]byte, bool) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	record, ok := b.records[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), record.raw...), true
}
