// Package cel evaluates CEL expressions over command output. The output is
// bound to the variable "_".
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// RootVariable is the name the evaluated data is bound to.
const RootVariable = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the strings, encoders, lists and
// math extensions.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	all := make([]cel.EnvOption, 0, 5+len(opts))
	all = append(all,
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	all = append(all, opts...)
	env, err := cel.NewEnv(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate compiles expr and evaluates it with data bound to "_". The result
// is converted back to plain Go values.
func (e *Evaluator) Evaluate(expr string, data interface{}) (interface{}, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]interface{}{RootVariable: data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// ToGo converts a CEL value to Go values recursively.
func ToGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	valuer, ok := val.(interface{ Value() interface{} })
	if !ok {
		return val
	}
	return fromNative(valuer.Value())
}

func fromNative(v interface{}) interface{} {
	switch inner := v.(type) {
	case ref.Val:
		return ToGo(inner)
	case []ref.Val:
		out := make([]interface{}, len(inner))
		for i, elem := range inner {
			out[i] = ToGo(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(inner))
		for i, elem := range inner {
			out[i] = fromNative(elem)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(inner))
		for k, elem := range inner {
			out[k] = fromNative(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]interface{}, len(inner))
		for k, elem := range inner {
			out[fmt.Sprint(ToGo(k))] = ToGo(elem)
		}
		return out
	default:
		return v
	}
}
