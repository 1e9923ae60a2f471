package settings

// KindConflict selects how UpdateFrom treats a key present in both
// collections with different kinds.
type KindConflict uint8

const (
	// KindConflictReplace swaps the target item for one of the source kind.
	KindConflictReplace KindConflict = iota
	// KindConflictReject keeps the target item and reports the key.
	KindConflictReject
)

func (k KindConflict) String() string {
	switch k {
	case KindConflictReplace:
		return "replace"
	case KindConflictReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Option configures a Collection.
type Option func(*collectionConfig)

type collectionConfig struct {
	name     string
	logger   Logger
	conflict KindConflict
}

func applyOptions(opts []Option) collectionConfig {
	cfg := collectionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// WithName labels the collection in log events and notifications.
func WithName(name string) Option {
	return func(cfg *collectionConfig) {
		cfg.name = name
	}
}

// WithLogger attaches a change logger. A nil logger discards events.
func WithLogger(logger Logger) Option {
	return func(cfg *collectionConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithKindConflict sets the UpdateFrom policy for keys whose kinds differ.
func WithKindConflict(policy KindConflict) Option {
	return func(cfg *collectionConfig) {
		cfg.conflict = policy
	}
}
