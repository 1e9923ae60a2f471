package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Context identifies the settings section being decoded.
type Context struct {
	Section string
}

// PreHook lets callers adjust the nested payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns a flat snapshot keyed by dotted names ("video.width") into a
// typed value by nesting the keys and decoding the result as JSON.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	strictFields bool
}

// WithPreHook runs hook on the nested payload prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook runs hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields fails decoding when a key has no matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strictFields = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode nests flat and decodes it into T, applying the configured hooks.
func (d *Decoder[T]) Decode(ctx Context, flat map[string]any) (T, error) {
	var zero T

	nested, err := Nest(flat)
	if err != nil {
		return zero, fmt.Errorf("hydrate: section %q: %w", ctx.Section, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, nested)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for section %q failed: %w", ctx.Section, err)
		}
		if next != nil {
			nested = next
		}
	}

	buffer, err := json.Marshal(nested)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal section %q: %w", ctx.Section, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strictFields {
		decoder.DisallowUnknownFields()
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode section %q: %w", ctx.Section, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for section %q failed: %w", ctx.Section, err)
		}
	}

	return result, nil
}

// Nest expands dotted keys into nested maps: {"a.b": 1, "c": 2} becomes
// {"a": {"b": 1}, "c": 2}. A key that is both a leaf and a parent of another
// key is reported as a conflict. Empty path segments are rejected.
func Nest(flat map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(flat))
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		segments := strings.Split(key, ".")
		node := out
		for i, segment := range segments {
			if segment == "" {
				return nil, fmt.Errorf("key %q has an empty segment", key)
			}
			if i == len(segments)-1 {
				if _, exists := node[segment]; exists {
					return nil, fmt.Errorf("key %q conflicts with a nested key", key)
				}
				node[segment] = flat[key]
				break
			}
			next, exists := node[segment]
			if !exists {
				child := map[string]any{}
				node[segment] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("key %q conflicts with leaf %q", key, strings.Join(segments[:i+1], "."))
			}
			node = child
		}
	}
	return out, nil
}
