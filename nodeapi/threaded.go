package nodeapi

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// ContextInput is the name of the context input and output of threaded nodes
	ContextInput = "context"
	// EnabledInput is the name of the gate input of gated nodes
	EnabledInput = "enabled"
)

// ContextFunc is the body of a threaded node. It receives the connection context explicitly
// and the remaining arguments, and returns only its own outputs.
type ContextFunc func(ctx context.Context, rc RemixContext, args Args) (Result, error)

// Node is the definition of a side-effecting node before context threading
type Node struct {
	ID            string
	DisplayName   string
	Description   string
	Category      string
	Inputs        Inputs
	Outputs       []OutputSpec
	OutputNode    bool
	AlwaysChanged bool
	// Gated nodes get an "enabled" input; when it is false Run is skipped and Empty is
	// returned in place of the node's own outputs.
	Gated bool
	Empty Result
	Run   ContextFunc
}

func contextInputSpec() InputSpec {
	return InputSpec{Name: ContextInput, Type: TypeContext, ForceInput: true}
}

func enabledInputSpec() InputSpec {
	return InputSpec{Name: EnabledInput, Type: TypeBoolean, Default: true}
}

// Threaded returns the descriptor of n with the context prepended to its inputs and outputs
// (and the gate to its inputs when n is gated). Execute extracts the context, skips disabled
// nodes, runs the body and prepends the very same context to its result.
// It panics when a gated node's Empty does not match its outputs.
func Threaded(n Node) *Descriptor {
	if n.Run == nil {
		panic(fmt.Sprintf("node %s has no body", n.ID))
	}
	if n.Gated && len(n.Empty) != len(n.Outputs) {
		panic(fmt.Sprintf("node %s declares %d outputs but its empty result has %d", n.ID, len(n.Outputs), len(n.Empty)))
	}

	required := []InputSpec{contextInputSpec()}
	if n.Gated {
		required = append(required, enabledInputSpec())
	}
	required = append(required, n.Inputs.Required...)

	outputs := make([]OutputSpec, 0, len(n.Outputs)+1)
	outputs = append(outputs, OutputSpec{Name: ContextInput, Type: TypeContext})
	outputs = append(outputs, n.Outputs...)

	d := &Descriptor{
		ID:            n.ID,
		DisplayName:   n.DisplayName,
		Description:   n.Description,
		Category:      n.Category,
		Inputs:        Inputs{Required: required, Optional: n.Inputs.Optional},
		Outputs:       outputs,
		OutputNode:    n.OutputNode,
		AlwaysChanged: n.AlwaysChanged,
	}

	run := n.Run
	gated := n.Gated
	empty := n.Empty
	id := n.ID
	d.Execute = func(ctx context.Context, args Args) (Result, error) {
		rc, ok := args.Context(ContextInput)
		if !ok {
			return nil, fmt.Errorf("%s: input %q: %w", id, ContextInput, ErrMissingArgument)
		}

		enabled := true
		if v, ok := args[EnabledInput].(bool); ok {
			enabled = v
		}
		rest := args.Without(ContextInput, EnabledInput)

		if gated && !enabled {
			slog.Debug("node disabled, skipping", "node", id)
			res := make(Result, 0, len(empty)+1)
			res = append(res, rc)
			return append(res, empty...), nil
		}

		out, err := run(ctx, rc, rest)
		if err != nil {
			return nil, err
		}
		res := make(Result, 0, len(out)+1)
		res = append(res, rc)
		return append(res, out...), nil
	}
	return d
}
