package nodes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinsley/remix2go/imagetensor"
	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHoldsEveryNode(t *testing.T) {
	r := NewRegistry(nil)
	assert.Equal(t, len(DisplayNames), r.Count())
	assert.Equal(t, DisplayNames, r.DisplayNames())

	for id, obj := range r.ObjectInfo() {
		assert.True(t, strings.HasPrefix(obj.Category, PrefixMenu+"/"), id)
		if id == "RTXRemixEndContext" {
			assert.True(t, obj.OutputNode)
			continue
		}
		assert.NotEmpty(t, obj.Output, id)
	}
}

func TestRemoteNodesAreThreaded(t *testing.T) {
	r := NewRegistry(nil)
	pure := map[string]bool{
		"RTXRemixStartContext":      true,
		"RTXRemixEndContext":        true,
		"RTXRemixRestAPIDetails":    true,
		"RTXRemixStringConstant":    true,
		"RTXRemixStringConcatenate": true,
		"RTXRemixStrToList":         true,
		"RTXRemixInvertBool":        true,
		"RTXRemixSwitch":            true,
		"RTXRemixDefineLayerId":     true,
	}
	for _, d := range r.Descriptors() {
		if pure[d.ID] {
			continue
		}
		require.NotEmpty(t, d.Inputs.Required, d.ID)
		assert.Equal(t, nodeapi.ContextInput, d.Inputs.Required[0].Name, d.ID)
		assert.Equal(t, nodeapi.EnabledInput, d.Inputs.Required[1].Name, d.ID)
		assert.Equal(t, nodeapi.TypeContext, d.Outputs[0].Type, d.ID)
	}
}

// sampleValue is a valid value for a required input without a default
func sampleValue(spec nodeapi.InputSpec) interface{} {
	if len(spec.Choices) > 0 {
		return spec.Choices[0]
	}
	switch spec.Type {
	case nodeapi.TypeInt:
		if spec.Min != nil {
			return *spec.Min
		}
		return 1
	case nodeapi.TypeFloat:
		return 1.0
	case nodeapi.TypeBoolean:
		return true
	case nodeapi.TypeImage:
		return imagetensor.New(1, 1, 3)
	}
	return "x"
}

func TestDisabledNodesSkipRemix(t *testing.T) {
	f := newFakeRemix(t)
	r := NewRegistry(f.env(t))
	rc := f.context(t)

	gated := 0
	for _, d := range r.Descriptors() {
		if _, optional, ok := d.Inputs.Lookup(nodeapi.EnabledInput); !ok || optional {
			continue
		}
		gated++
		t.Run(d.ID, func(t *testing.T) {
			args := nodeapi.Args{nodeapi.ContextInput: rc, nodeapi.EnabledInput: false}
			for _, spec := range d.Inputs.Required {
				if _, set := args[spec.Name]; !set && spec.Default == nil {
					args[spec.Name] = sampleValue(spec)
				}
			}
			before := len(f.Calls())

			res, err := r.Execute(context.Background(), d.ID, args)
			require.NoError(t, err)
			assert.Len(t, res, len(d.Outputs))
			assert.Equal(t, rc, res[0])
			assert.Len(t, f.Calls(), before)
		})
	}
	assert.NotZero(t, gated)
	assert.Empty(t, f.Calls())
}

func TestAlwaysChangedNodes(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"RTXRemixGetLayers", "RTXRemixGetEditTarget", "RTXRemixGetTextures"} {
		d, ok := r.Get(id)
		require.True(t, ok, id)
		assert.True(t, d.AlwaysChanged, id)
	}
}

func TestStartContextDefaults(t *testing.T) {
	r := NewRegistry(&Env{DefaultAddress: "10.0.0.4", DefaultPort: 9000})

	res, err := r.Execute(context.Background(), "RTXRemixStartContext", nodeapi.Args{})
	require.NoError(t, err)
	assert.Equal(t, nodeapi.Result{nodeapi.RemixContext{Address: "10.0.0.4", Port: 9000}}, res)

	_, err = r.Execute(context.Background(), "RTXRemixStartContext", nodeapi.Args{"port": 70000})
	assert.True(t, errors.Is(err, nodeapi.ErrInvalidArgument))
}

func TestCommonNodes(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	tests := []struct {
		id   string
		args nodeapi.Args
		want nodeapi.Result
	}{
		{"RTXRemixRestAPIDetails", nodeapi.Args{}, nodeapi.Result{"127.0.0.1", 8011}},
		{"RTXRemixStringConstant", nodeapi.Args{"string": "abc"}, nodeapi.Result{"abc"}},
		{"RTXRemixStringConcatenate", nodeapi.Args{"string_a": "a", "string_b": "b", "delimiter": "/"}, nodeapi.Result{"a/b"}},
		{"RTXRemixStrToList", nodeapi.Args{"string": " a, b ,,c "}, nodeapi.Result{[]string{"a", "b", "c"}}},
		{"RTXRemixStrToList", nodeapi.Args{"string": "a;b", "separator": ";"}, nodeapi.Result{[]string{"a", "b"}}},
		{"RTXRemixInvertBool", nodeapi.Args{"value": true}, nodeapi.Result{false}},
		{"RTXRemixSwitch", nodeapi.Args{"on_true": 1, "on_false": "x"}, nodeapi.Result{1}},
		{"RTXRemixSwitch", nodeapi.Args{"condition": false, "on_true": 1, "on_false": "x"}, nodeapi.Result{"x"}},
		{"RTXRemixDefineLayerId", nodeapi.Args{"name": "b.usda", "parent_layer_id": "C:/p/a.usda"}, nodeapi.Result{"C:/p/b.usda"}},
		{"RTXRemixEndContext", nodeapi.Args{"context": nodeapi.RemixContext{}}, nodeapi.Result{}},
	}
	for _, tt := range tests {
		res, err := r.Execute(ctx, tt.id, tt.args)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, res, tt.id)
	}
}

func TestDeleteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(p, []byte("png"), 0o644))

	r := NewRegistry(nil)
	rc := nodeapi.RemixContext{Address: "127.0.0.1", Port: 8011}

	res, err := r.Execute(context.Background(), "RTXRemixDeleteFile", nodeapi.Args{"context": rc, "path": p})
	require.NoError(t, err)
	assert.Equal(t, nodeapi.Result{rc, true}, res)
	assert.NoFileExists(t, p)

	_, err = r.Execute(context.Background(), "RTXRemixDeleteFile", nodeapi.Args{"context": rc, "path": p})
	assert.True(t, errors.Is(err, remixapi.ErrFileNotFound))

	res, err = r.Execute(context.Background(), "RTXRemixDeleteFile", nodeapi.Args{"context": rc, "path": p, "enabled": false})
	require.NoError(t, err)
	assert.Equal(t, nodeapi.Result{rc, false}, res)
}

func TestDeleteFileOtherFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "child"), []byte("x"), 0o644))

	// a non empty directory can't be removed
	deleted, err := DeleteFile(dir)
	assert.NoError(t, err)
	assert.False(t, deleted)
}
