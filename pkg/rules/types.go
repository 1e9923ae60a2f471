// Package rules validates staged settings with expression rules before they
// are committed. Rules run on expr by default, with CEL and JavaScript (build
// tag js_eval) available as alternative engines.
package rules

import (
	"sort"
	"time"

	"github.com/goliatone/go-settings/internal/hydrate"
)

// Reserved binding names. Settings whose first key segment collides with one of
// these stay reachable through the settings map.
const (
	BindingSettings = "settings"
	BindingSection  = "section"
	BindingNow      = "now"
)

// RuleContext carries the inputs an expression runs against.
type RuleContext struct {
	Section string
	Values  map[string]any
	Now     *time.Time
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Values == nil {
		ctx.Values = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

func (ctx RuleContext) sectionLabel() string {
	if ctx.Section != "" {
		return ctx.Section
	}
	return "unknown"
}

// bindings exposes dotted keys as nested variables ("audio.volume" becomes
// audio.volume) alongside the reserved names. Keys that cannot nest, such as
// "audio" next to "audio.volume", leave only the reserved names bound; rules
// can still read every key through settings.
func (ctx RuleContext) bindings() map[string]any {
	ctx = ctx.withDefaults()
	env := make(map[string]any, len(ctx.Values)+3)
	if nested, err := hydrate.Nest(ctx.Values); err == nil {
		for key, value := range nested {
			env[key] = value
		}
	}
	env[BindingSettings] = ctx.Values
	env[BindingSection] = ctx.Section
	env[BindingNow] = ctx.timestamp()
	return env
}

func sortedNames(env map[string]any) []string {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

type engineNamer interface {
	Engine() string
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.Engine()
	}
	return "custom"
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
