package rules

import (
	"errors"
	"fmt"
	"sort"
	"time"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/internal/hydrate"
)

// Rule is a boolean expression that must hold for a section before its staged
// changes are committed.
type Rule struct {
	Name    string
	Section string
	Expr    string
	Message string
}

type compiledRule struct {
	rule    Rule
	program CompiledRule
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithEvaluatorLogger records every rule evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) ValidatorOption {
	return func(v *Validator) {
		if logger == nil {
			v.logger = noopEvaluatorLogger{}
			return
		}
		v.logger = logger
	}
}

// WithClock overrides the time bound to now.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Validator evaluates rules grouped by section.
type Validator struct {
	evaluator Evaluator
	engine    string
	sections  map[string][]compiledRule
	logger    EvaluatorLogger
	now       func() time.Time
}

// NewValidator compiles rules with evaluator, defaulting to expr when nil.
func NewValidator(evaluator Evaluator, rules []Rule, opts ...ValidatorOption) (*Validator, error) {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	v := &Validator{
		evaluator: evaluator,
		engine:    engineName(evaluator),
		sections:  map[string][]compiledRule{},
		logger:    noopEvaluatorLogger{},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	var errs []error
	for _, rule := range rules {
		if err := v.add(rule); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Validator) add(rule Rule) error {
	if rule.Section == "" {
		return fmt.Errorf("rules: rule %q has no section", rule.Name)
	}
	if rule.Expr == "" {
		return fmt.Errorf("rules: rule %q: %w", rule.Name, ErrEmptyExpression)
	}
	if rule.Name == "" {
		rule.Name = rule.Expr
	}
	program, err := v.evaluator.Compile(rule.Expr)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) && evalErr.Rule == "" {
			evalErr.Rule = rule.Name
			evalErr.Section = rule.Section
		}
		return err
	}
	v.sections[rule.Section] = append(v.sections[rule.Section], compiledRule{rule: rule, program: program})
	return nil
}

// Engine names the evaluator backing the rules.
func (v *Validator) Engine() string {
	return v.engine
}

// Sections lists the sections that have at least one rule.
func (v *Validator) Sections() []string {
	names := make([]string, 0, len(v.sections))
	for name := range v.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rules returns the rules bound to section in registration order.
func (v *Validator) Rules(section string) []Rule {
	compiled := v.sections[section]
	out := make([]Rule, 0, len(compiled))
	for _, entry := range compiled {
		out = append(out, entry.rule)
	}
	return out
}

// Validate runs every rule bound to section against values, a flat map keyed
// by setting name. A rule yielding false produces a *ViolationError, one that
// fails or yields a non-bool produces an *EvaluationError. All failures are
// joined.
func (v *Validator) Validate(section string, values map[string]any) error {
	compiled := v.sections[section]
	if len(compiled) == 0 {
		return nil
	}
	now := v.now()
	ctx := RuleContext{Section: section, Values: values, Now: &now}
	if _, err := hydrate.Nest(values); err != nil {
		v.logger.LogEvaluation(EvaluatorLogEvent{
			Engine:  v.engine,
			Section: ctx.sectionLabel(),
			Err:     fmt.Errorf("rules: nested bindings disabled: %w", err),
		})
	}

	var errs []error
	for _, entry := range compiled {
		if err := v.check(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateCollection validates the current values of c under its name.
func (v *Validator) ValidateCollection(c *settings.Collection) error {
	return v.Validate(c.Name(), c.Snapshot())
}

func (v *Validator) check(ctx RuleContext, entry compiledRule) error {
	start := time.Now()
	result, err := entry.program.Evaluate(ctx)
	if err == nil {
		if ok, isBool := result.(bool); !isBool {
			err = fmt.Errorf("rule returned %T, want bool", result)
		} else if !ok {
			err = &ViolationError{Rule: entry.rule.Name, Section: ctx.Section, Message: entry.rule.Message}
		}
	}

	var violation *ViolationError
	if err != nil && !errors.As(err, &violation) {
		err = wrapEvaluationError(v.engine, entry.rule.Expr, ctx.sectionLabel(), err)
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) && evalErr.Rule == "" {
			evalErr.Rule = entry.rule.Name
		}
	}

	v.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   v.engine,
		Rule:     entry.rule.Name,
		Expr:     entry.rule.Expr,
		Section:  ctx.sectionLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}
