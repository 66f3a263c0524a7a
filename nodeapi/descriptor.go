package nodeapi

import (
	"context"
	"fmt"
)

// Result is the ordered tuple of output values of one invocation.
// List outputs hold a slice.
type Result []interface{}

// ExecuteFunc is the execution entry point of a node
type ExecuteFunc func(ctx context.Context, args Args) (Result, error)

// Descriptor is the static description of a node type. It is built once at load time and
// never modified afterwards.
type Descriptor struct {
	ID          string
	DisplayName string
	// Description is a one line summary used by the documentation generator
	Description string
	Category    string
	Inputs      Inputs
	Outputs     []OutputSpec
	// OutputNode forces the host to evaluate everything upstream of the node
	OutputNode bool
	// AlwaysChanged marks nodes the host must never cache: the state they read can change
	// outside the graph
	AlwaysChanged bool
	// ContextSource marks the node creating connection contexts
	ContextSource bool
	Execute       ExecuteFunc
}

// Bind validates args against the input schema and returns a new Args holding values of the
// declared Go types. Absent inputs with a default get the default; absent required inputs
// without one fail with ErrMissingArgument. Unknown names are dropped.
func (d *Descriptor) Bind(args Args) (Args, error) {
	bound := make(Args, len(args))
	bind := func(spec InputSpec, required bool) error {
		v, ok := args[spec.Name]
		if !ok || v == nil {
			if spec.Default == nil {
				if required {
					return fmt.Errorf("%s: input %q: %w", d.ID, spec.Name, ErrMissingArgument)
				}
				return nil
			}
			v = spec.Default
		}
		cv, err := coerce(spec, v)
		if err != nil {
			return fmt.Errorf("%s: input %q: %w: %v", d.ID, spec.Name, ErrInvalidArgument, err)
		}
		bound[spec.Name] = cv
		return nil
	}

	for _, spec := range d.Inputs.Required {
		if err := bind(spec, true); err != nil {
			return nil, err
		}
	}
	for _, spec := range d.Inputs.Optional {
		if err := bind(spec, false); err != nil {
			return nil, err
		}
	}
	return bound, nil
}

// Run binds args and executes the node, checking the result against the output schema
func (d *Descriptor) Run(ctx context.Context, args Args) (Result, error) {
	bound, err := d.Bind(args)
	if err != nil {
		return nil, err
	}
	res, err := d.Execute(ctx, bound)
	if err != nil {
		return nil, err
	}
	if len(res) != len(d.Outputs) {
		return nil, fmt.Errorf("%s returned %d values but declares %d outputs", d.ID, len(res), len(d.Outputs))
	}
	return res, nil
}
