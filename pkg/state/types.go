package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-settings/pkg/codec"
)

var (
	ErrETagMismatch = errors.New("state: etag mismatch")
	ErrNoSource     = errors.New("state: no runtime or default snapshot")
)

// Scope selects which snapshot of a domain a Ref points at.
type Scope string

const (
	ScopeDefaults Scope = "defaults"
	ScopeRuntime  Scope = "runtime"
	ScopeUser     Scope = "user"
)

// Ref identifies one persisted document.
type Ref struct {
	Domain string
	Scope  Scope
	ID     string
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", errors.New("missing domain")
	}
	switch r.Scope {
	case ScopeDefaults, ScopeRuntime:
		return fmt.Sprintf("%s/%s", r.Scope, r.Domain), nil
	case ScopeUser:
		if r.ID == "" {
			return "", fmt.Errorf("missing id for scope %q", r.Scope)
		}
		return fmt.Sprintf("%s/%s/%s", r.Scope, r.ID, r.Domain), nil
	default:
		return "", fmt.Errorf("unsupported scope %q", r.Scope)
	}
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Backend loads and saves whole settings documents.
type Backend interface {
	Load(ctx context.Context, ref Ref) (doc codec.Document, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, doc codec.Document, meta Meta) (Meta, error)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
