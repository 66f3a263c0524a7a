package nodes

import (
	"context"
	"strings"

	"github.com/richinsley/remix2go/nodeapi"
)

func commonNodes(env *Env) []*nodeapi.Descriptor {
	cat := category("common")
	return []*nodeapi.Descriptor{
		{
			ID:            "RTXRemixStartContext",
			DisplayName:   displayName("RTXRemixStartContext"),
			Description:   "Create the connection context every RTX Remix node runs in",
			Category:      cat,
			ContextSource: true,
			Inputs: nodeapi.Inputs{
				Required: addressInputs(env),
			},
			Outputs: []nodeapi.OutputSpec{{Name: nodeapi.ContextInput, Type: nodeapi.TypeContext}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{nodeapi.RemixContext{Address: args.String("address"), Port: args.Int("port")}}, nil
			},
		},
		{
			ID:          "RTXRemixEndContext",
			DisplayName: displayName("RTXRemixEndContext"),
			Description: "End a context so that every node chained before it is executed",
			Category:    cat,
			OutputNode:  true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: nodeapi.ContextInput, Type: nodeapi.TypeContext, ForceInput: true}},
			},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{}, nil
			},
		},
		{
			ID:          "RTXRemixRestAPIDetails",
			DisplayName: displayName("RTXRemixRestAPIDetails"),
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: addressInputs(env),
			},
			Outputs: []nodeapi.OutputSpec{
				{Name: "address", Type: nodeapi.TypeString},
				{Name: "port", Type: nodeapi.TypeInt},
			},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{args.String("address"), args.Int("port")}, nil
			},
		},
		{
			ID:          "RTXRemixStringConstant",
			DisplayName: displayName("RTXRemixStringConstant"),
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "string", Type: nodeapi.TypeString, Default: ""}},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "string", Type: nodeapi.TypeString}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{args.String("string")}, nil
			},
		},
		{
			ID:          "RTXRemixStringConcatenate",
			DisplayName: displayName("RTXRemixStringConcatenate"),
			Description: "Join two strings with an optional delimiter",
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "string_a", Type: nodeapi.TypeString, Default: ""},
					{Name: "string_b", Type: nodeapi.TypeString, Default: ""},
					{Name: "delimiter", Type: nodeapi.TypeString, Default: ""},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "string", Type: nodeapi.TypeString}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{args.String("string_a") + args.String("delimiter") + args.String("string_b")}, nil
			},
		},
		{
			ID:          "RTXRemixStrToList",
			DisplayName: displayName("RTXRemixStrToList"),
			Description: "Split a string into a list of trimmed values",
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "string", Type: nodeapi.TypeString, Default: "", Multiline: true},
					{Name: "separator", Type: nodeapi.TypeString, Default: ","},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "list", Type: nodeapi.TypeString, IsList: true}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{splitList(args.String("string"), args.String("separator"))}, nil
			},
		},
		{
			ID:          "RTXRemixInvertBool",
			DisplayName: displayName("RTXRemixInvertBool"),
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "value", Type: nodeapi.TypeBoolean, ForceInput: true}},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "value", Type: nodeapi.TypeBoolean}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{!args.Bool("value")}, nil
			},
		},
		{
			ID:          "RTXRemixSwitch",
			DisplayName: displayName("RTXRemixSwitch"),
			Description: "Forward one of two values depending on a condition",
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "condition", Type: nodeapi.TypeBoolean, Default: true, LabelOn: "on_true", LabelOff: "on_false"},
					{Name: "on_true", Type: nodeapi.TypeAny, ForceInput: true},
					{Name: "on_false", Type: nodeapi.TypeAny, ForceInput: true},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "value", Type: nodeapi.TypeAny}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				if args.Bool("condition") {
					return nodeapi.Result{args.Value("on_true")}, nil
				}
				return nodeapi.Result{args.Value("on_false")}, nil
			},
		},
	}
}

func addressInputs(env *Env) []nodeapi.InputSpec {
	return []nodeapi.InputSpec{
		{Name: "address", Type: nodeapi.TypeString, Default: env.defaultAddress()},
		{
			Name:    "port",
			Type:    nodeapi.TypeInt,
			Default: env.defaultPort(),
			Min:     nodeapi.IntPtr(0),
			Max:     nodeapi.IntPtr(65353),
			Step:    1,
			Display: "number",
		},
	}
}

// splitList splits s on sep, trims every item and drops the empty ones
func splitList(s string, sep string) []string {
	out := []string{}
	if sep == "" {
		sep = ","
	}
	for _, item := range strings.Split(s, sep) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
