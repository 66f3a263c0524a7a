package nodeapi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/richinsley/remix2go/imagetensor"
)

// Args are the keyword arguments of one node invocation, keyed by input name.
// After Descriptor.Bind every present value has the Go type of its declared input:
// string, int, float64, bool, *imagetensor.Tensor or RemixContext.
type Args map[string]interface{}

// Has reports whether name was provided
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Value returns the raw value of name, nil when absent
func (a Args) Value(name string) interface{} {
	return a[name]
}

// String returns the string value of name, "" when absent
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the int value of name, 0 when absent
func (a Args) Int(name string) int {
	i, _ := a[name].(int)
	return i
}

// Bool returns the bool value of name, false when absent
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Image returns the image value of name, nil when absent
func (a Args) Image(name string) *imagetensor.Tensor {
	t, _ := a[name].(*imagetensor.Tensor)
	return t
}

// Context returns the connection context stored under name
func (a Args) Context(name string) (RemixContext, bool) {
	rc, ok := a[name].(RemixContext)
	return rc, ok
}

// Without returns a copy of a without the given names
func (a Args) Without(names ...string) Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// coerce converts a caller supplied value to the Go type of spec. Values decoded from JSON
// (float64, json.Number, maps, base64 strings) are accepted.
func coerce(spec InputSpec, v interface{}) (interface{}, error) {
	if len(spec.Choices) > 0 {
		return toString(v)
	}
	switch spec.Type {
	case TypeString, TypeCombo:
		return toString(v)
	case TypeInt:
		i, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if spec.Min != nil && i < *spec.Min {
			return nil, fmt.Errorf("value %d is below the minimum %d", i, *spec.Min)
		}
		if spec.Max != nil && i > *spec.Max {
			return nil, fmt.Errorf("value %d is above the maximum %d", i, *spec.Max)
		}
		return i, nil
	case TypeFloat:
		return toFloat(v)
	case TypeBoolean:
		return toBool(v)
	case TypeImage:
		return toImage(v)
	case TypeContext:
		return toContext(v)
	default:
		return v, nil
	}
}

func toString(v interface{}) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case json.Number:
		return value.String(), nil
	}
	return "", fmt.Errorf("expected a string, got %T", v)
}

func toInt(v interface{}) (int, error) {
	switch value := v.(type) {
	case int:
		return value, nil
	case int32:
		return int(value), nil
	case int64:
		return int(value), nil
	case float64:
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("expected an integer, got %v", value)
		}
		return int(value), nil
	case json.Number:
		i, err := value.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	case string:
		return strconv.Atoi(value)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toFloat(v interface{}) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case json.Number:
		return value.Float64()
	case string:
		return strconv.ParseFloat(value, 64)
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toBool(v interface{}) (bool, error) {
	switch value := v.(type) {
	case bool:
		return value, nil
	case string:
		return strconv.ParseBool(value)
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

func toImage(v interface{}) (*imagetensor.Tensor, error) {
	switch value := v.(type) {
	case *imagetensor.Tensor:
		if value == nil {
			return nil, fmt.Errorf("nil image")
		}
		return value, nil
	case imagetensor.Tensor:
		return &value, nil
	case string:
		return imagetensor.FromBase64PNG(value)
	}
	return nil, fmt.Errorf("expected an image, got %T", v)
}

func toContext(v interface{}) (RemixContext, error) {
	switch value := v.(type) {
	case RemixContext:
		return value, nil
	case *RemixContext:
		if value == nil {
			return RemixContext{}, fmt.Errorf("nil context")
		}
		return *value, nil
	case map[string]interface{}:
		rc := RemixContext{}
		address, err := toString(value["address"])
		if err != nil {
			return rc, fmt.Errorf("context address: %w", err)
		}
		port, err := toInt(value["port"])
		if err != nil {
			return rc, fmt.Errorf("context port: %w", err)
		}
		rc.Address = address
		rc.Port = port
		return rc, nil
	}
	return RemixContext{}, fmt.Errorf("expected a %s, got %T", TypeContext, v)
}
