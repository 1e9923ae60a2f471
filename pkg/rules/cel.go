package rules

import (
	"fmt"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celCallArity bounds the arguments accepted by call after the function name.
const celCallArity = 3

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctions exposes the registry helpers through call("name", args...).
func CELWithFunctions(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Settings are
// declared as dynamic variables, so programs are cached per expression and set
// of top-level names.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyExpression)
	}
	env := ctx.bindings()
	variables := celVariables(env)
	program, err := e.loadOrCompile(expression, variables)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.sectionLabel(), err)
	}
	activation := make(map[string]any, len(variables)+3)
	for _, name := range variables {
		activation[name] = env[name]
	}
	activation[BindingSettings] = env[BindingSettings]
	activation[BindingSection] = env[BindingSection]
	activation[BindingNow] = env[BindingNow]

	out, _, err := program.program.Eval(activation)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.sectionLabel(), err)
	}
	return out.Value(), nil
}

// Compile checks the syntax up front. Type checking waits for the first
// evaluation because it depends on which settings exist.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyExpression)
	}
	env, err := e.buildEnv(nil)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, variables []string) (*celProgram, error) {
	key := fmt.Sprintf("cel:%s|%s", expression, strings.Join(variables, ","))
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(variables)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable(BindingNow, celgo.TimestampType),
		celgo.Variable(BindingSection, celgo.StringType),
		celgo.Variable(BindingSettings, celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, e.callFunction())
	}
	return celgo.NewEnv(opts...)
}

// callFunction declares call(string, dyn...) with up to celCallArity
// arguments, since CEL has no variadic overloads.
func (e *celEvaluator) callFunction() celgo.EnvOption {
	binding := celgo.FunctionBinding(e.callBinding())
	overloads := make([]celgo.FunctionOpt, 0, celCallArity+1)
	args := []*celgo.Type{celgo.StringType}
	for arity := 0; arity <= celCallArity; arity++ {
		id := fmt.Sprintf("call_string_dyn%d", arity)
		overloads = append(overloads, celgo.Overload(id, append([]*celgo.Type(nil), args...), celgo.DynType, binding))
		args = append(args, celgo.DynType)
	}
	return celgo.Function("call", overloads...)
}

func (e *celEvaluator) callBinding() func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("call requires a function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("call name must be a string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

// celVariables lists the top-level setting names usable as CEL identifiers.
func celVariables(env map[string]any) []string {
	var names []string
	for _, name := range sortedNames(env) {
		switch name {
		case BindingNow, BindingSection, BindingSettings:
			continue
		}
		if isIdentifier(name) {
			names = append(names, name)
		}
	}
	return names
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", ErrNoEvaluator)
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}
