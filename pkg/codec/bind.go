package codec

import (
	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/internal/hydrate"
)

// BindOption configures Bind.
type BindOption[T any] hydrate.DecoderOption[T]

// BindStrict fails when a setting has no matching struct field.
func BindStrict[T any]() BindOption[T] {
	return BindOption[T](hydrate.WithDisallowUnknownFields[T]())
}

// BindCheck runs check on the decoded value. The error it returns is reported
// by Bind.
func BindCheck[T any](check func(section string, value *T) error) BindOption[T] {
	return BindOption[T](hydrate.WithPostHook[T](func(ctx hydrate.Context, value *T) error {
		return check(ctx.Section, value)
	}))
}

// Bind decodes the current values of c into T. Dotted keys address nested
// fields, so "video.width" fills Video.Width given matching json tags.
func Bind[T any](c *settings.Collection, opts ...BindOption[T]) (T, error) {
	decoderOpts := make([]hydrate.DecoderOption[T], 0, len(opts))
	for _, opt := range opts {
		decoderOpts = append(decoderOpts, hydrate.DecoderOption[T](opt))
	}
	var (
		section string
		flat    map[string]any
	)
	if c != nil {
		section = c.Name()
		flat = c.Snapshot()
	}
	return hydrate.NewDecoder[T](decoderOpts...).Decode(hydrate.Context{Section: section}, flat)
}
