package hclconfig

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// SSMFunc marks a parameter path as an indirect reference: ssm("/a/b")
// evaluates to "ssm:/a/b". The path is not checked here; Validate warns
// about paths without a leading slash.
var SSMFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "path", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(deferred.Ref(args[0].AsString())), nil
	},
})

// EnvFunc reads a process environment variable; unset variables evaluate to
// the empty string.
var EnvFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func functions() map[string]function.Function {
	return map[string]function.Function{
		"ssm":    SSMFunc,
		"env":    EnvFunc,
		"lower":  stdlib.LowerFunc,
		"upper":  stdlib.UpperFunc,
		"format": stdlib.FormatFunc,
		"join":   stdlib.JoinFunc,
	}
}

// evalContext returns the context pipeline expressions are evaluated in.
func evalContext(service string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"service": cty.StringVal(service),
		},
		Functions: functions(),
	}
}
