package nodeapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listNode(calls *int) Node {
	return Node{
		ID:          "TestList",
		DisplayName: "Test List",
		Category:    "test",
		Inputs: Inputs{
			Required: []InputSpec{{Name: "prefix", Type: TypeString, Default: "p"}},
		},
		Outputs: []OutputSpec{
			{Name: "items", Type: TypeString, IsList: true},
			{Name: "found", Type: TypeBoolean},
		},
		Gated: true,
		Empty: Result{[]string{}, false},
		Run: func(ctx context.Context, rc RemixContext, args Args) (Result, error) {
			*calls++
			if args.Has(ContextInput) || args.Has(EnabledInput) {
				return nil, errors.New("context leaked into the body")
			}
			return Result{[]string{args.String("prefix") + rc.Address}, true}, nil
		},
	}
}

func TestThreadedSchema(t *testing.T) {
	calls := 0
	d := Threaded(listNode(&calls))

	require.Len(t, d.Inputs.Required, 3)
	assert.Equal(t, ContextInput, d.Inputs.Required[0].Name)
	assert.Equal(t, TypeContext, d.Inputs.Required[0].Type)
	assert.True(t, d.Inputs.Required[0].ForceInput)
	assert.Equal(t, EnabledInput, d.Inputs.Required[1].Name)
	assert.Equal(t, true, d.Inputs.Required[1].Default)
	assert.Equal(t, "prefix", d.Inputs.Required[2].Name)

	obj := d.Object()
	assert.Equal(t, []string{TypeContext, TypeString, TypeBoolean}, obj.Output)
	assert.Equal(t, []bool{false, true, false}, obj.OutputIsList)
	assert.Equal(t, []string{"context", "items", "found"}, obj.OutputName)
}

func TestThreadedUngatedHasNoEnable(t *testing.T) {
	n := listNode(new(int))
	n.Gated = false
	d := Threaded(n)
	_, _, ok := d.Inputs.Lookup(EnabledInput)
	assert.False(t, ok)
}

func TestThreadedPassesContextThrough(t *testing.T) {
	calls := 0
	d := Threaded(listNode(&calls))
	rc := RemixContext{Address: "10.0.0.2", Port: 8011}

	res, err := d.Run(context.Background(), Args{"context": rc, "prefix": "x"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, rc, res[0])
	assert.Equal(t, []string{"x10.0.0.2"}, res[1])
	assert.Equal(t, true, res[2])
	assert.Equal(t, 1, calls)
}

func TestThreadedDisabledSkipsBody(t *testing.T) {
	calls := 0
	d := Threaded(listNode(&calls))
	rc := RemixContext{Address: "127.0.0.1", Port: 8011}

	res, err := d.Run(context.Background(), Args{"context": rc, "enabled": false})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, Result{rc, []string{}, false}, res)
}

func TestThreadedMissingContext(t *testing.T) {
	calls := 0
	d := Threaded(listNode(&calls))

	_, err := d.Execute(context.Background(), Args{"prefix": "x"})
	assert.True(t, errors.Is(err, ErrMissingArgument))

	_, err = d.Run(context.Background(), Args{"prefix": "x"})
	assert.True(t, errors.Is(err, ErrMissingArgument))
	assert.Equal(t, 0, calls)
}

func TestThreadedContextFromJSONMap(t *testing.T) {
	calls := 0
	d := Threaded(listNode(&calls))

	res, err := d.Run(context.Background(), Args{
		"context": map[string]interface{}{"address": "host", "port": float64(9000)},
	})
	require.NoError(t, err)
	assert.Equal(t, RemixContext{Address: "host", Port: 9000}, res[0])
}

func TestThreadedBodyError(t *testing.T) {
	n := listNode(new(int))
	boom := errors.New("boom")
	n.Run = func(ctx context.Context, rc RemixContext, args Args) (Result, error) {
		return nil, boom
	}
	_, err := Threaded(n).Run(context.Background(), Args{"context": RemixContext{}})
	assert.ErrorIs(t, err, boom)
}

func TestThreadedEmptyArityPanics(t *testing.T) {
	n := listNode(new(int))
	n.Empty = Result{[]string{}}
	assert.Panics(t, func() { Threaded(n) })
}
