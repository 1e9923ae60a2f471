package settings

// Sink receives one call per committed change during ApplyChanges.
type Sink interface {
	Apply(name string, item *Item)
}

// SinkFunc allows plain functions to satisfy Sink.
type SinkFunc func(name string, item *Item)

// Apply dispatches to the underlying function.
func (fn SinkFunc) Apply(name string, item *Item) {
	if fn == nil {
		return
	}
	fn(name, item)
}

// Sinks fans a change out to zero or more sinks in order.
type Sinks []Sink

// Apply forwards the change to every non-nil sink.
func (s Sinks) Apply(name string, item *Item) {
	for _, sink := range s {
		if sink == nil {
			continue
		}
		sink.Apply(name, item)
	}
}
