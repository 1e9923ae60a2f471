package state

import (
	"time"

	settings "github.com/goliatone/go-settings"
)

// DefaultDomain names the documents a Store reads and writes unless
// overridden with WithRuntime or WithDefaults.
const DefaultDomain = "settings"

// Section names used when WithSections is not given.
const (
	SectionSystem   = "system"
	SectionGameplay = "gameplay"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	runtime        Ref
	defaults       Ref
	sections       []string
	notifiers      []Notifier
	validator      Validator
	autoSave       bool
	logger         settings.Logger
	now            func() time.Time
	collectionOpts []settings.Option
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{
		runtime:  Ref{Domain: DefaultDomain, Scope: ScopeRuntime},
		defaults: Ref{Domain: DefaultDomain, Scope: ScopeDefaults},
		sections: []string{SectionSystem, SectionGameplay},
		logger:   settings.NopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRuntime sets the document the store loads from and saves to.
func WithRuntime(ref Ref) Option {
	return func(cfg *storeConfig) {
		cfg.runtime = ref
	}
}

// WithDefaults sets the read-only document used as fallback and reset source.
func WithDefaults(ref Ref) Option {
	return func(cfg *storeConfig) {
		cfg.defaults = ref
	}
}

// WithSections replaces the default system and gameplay sections.
func WithSections(names ...string) Option {
	return func(cfg *storeConfig) {
		cfg.sections = append([]string(nil), names...)
	}
}

// WithNotifiers appends notifiers invoked for every committed setting.
func WithNotifiers(notifiers ...Notifier) Option {
	return func(cfg *storeConfig) {
		for _, n := range notifiers {
			if n != nil {
				cfg.notifiers = append(cfg.notifiers, n)
			}
		}
	}
}

// WithValidator gates ApplyChanges on validator.
func WithValidator(validator Validator) Option {
	return func(cfg *storeConfig) {
		cfg.validator = validator
	}
}

// WithAutoSave saves the runtime document on Close.
func WithAutoSave(enabled bool) Option {
	return func(cfg *storeConfig) {
		cfg.autoSave = enabled
	}
}

// WithLogger records store and collection events.
func WithLogger(logger settings.Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			logger = settings.NopLogger()
		}
		cfg.logger = logger
	}
}

// WithClock overrides the time source used for snapshot metadata.
func WithClock(now func() time.Time) Option {
	return func(cfg *storeConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithCollectionOptions passes extra options to every section collection.
func WithCollectionOptions(opts ...settings.Option) Option {
	return func(cfg *storeConfig) {
		cfg.collectionOpts = append(cfg.collectionOpts, opts...)
	}
}
