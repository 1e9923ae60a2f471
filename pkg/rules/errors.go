package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyExpression = errors.New("rules: expression must not be empty")
	ErrNoEvaluator     = errors.New("rules: evaluator not configured")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine  string
	Rule    string
	Expr    string
	Section string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	rule := ""
	if e.Rule != "" {
		rule = fmt.Sprintf(" rule=%q", e.Rule)
	}
	return fmt.Sprintf("rules: %s evaluator%s %s section=%s: %v", e.Engine, rule, describeExpression(e.Expr), e.Section, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ViolationError reports a rule that evaluated to false.
type ViolationError struct {
	Rule    string
	Section string
	Message string
}

func (e *ViolationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("rules: section %q violates %q", e.Section, e.Rule)
	}
	return fmt.Sprintf("rules: section %q violates %q: %s", e.Section, e.Rule, e.Message)
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "rules:") {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, section string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Section == "" {
			evalErr.Section = section
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Section: section,
		Err:     err,
	}
}
