package interp

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// LookupEnv has the shape of os.LookupEnv so tests can substitute a
// fixed environment.
type LookupEnv func(name string) (string, bool)

// functions builds the template function table. The timestamp is fixed
// for a whole composition so every now() call in one run agrees.
func functions(lookup LookupEnv, ts time.Time) map[string]function.Function {
	return map[string]function.Function{
		"env":   envFunc(lookup),
		"now":   nowFunc(ts),
		"upper": stdlib.UpperFunc,
		"lower": stdlib.LowerFunc,
	}
}

// envFunc reads an environment variable. With a single argument an
// unset variable is an error; the optional second argument supplies a
// default instead.
func envFunc(lookup LookupEnv) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) > 2 {
				return cty.NilVal, fmt.Errorf("env takes at most two arguments, got %d", len(args))
			}
			name := args[0].AsString()
			if v, ok := lookup(name); ok {
				return cty.StringVal(v), nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return cty.NilVal, fmt.Errorf("environment variable %q is not set", name)
		},
	})
}

// nowFunc formats the composition timestamp with a Go time layout.
func nowFunc(ts time.Time) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "layout", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(ts.Format(args[0].AsString())), nil
		},
	})
}
