package nodeapi

import (
	"bytes"
	"encoding/json"
)

// InputSpec declares one input of a node. Only the options that are set are serialized.
type InputSpec struct {
	Name string
	// Type is one of the Type* constants. Inputs with Choices are combos and serialize the
	// choice list in place of the type.
	Type        string
	Choices     []string
	Default     interface{}
	ForceInput  bool // the value must come from another node's output
	Multiline   bool
	Min         *int
	Max         *int
	Step        int
	Display     string
	LabelOn     string
	LabelOff    string
	Placeholder string
}

// IntPtr is a helper for Min and Max
func IntPtr(v int) *int {
	return &v
}

func (s InputSpec) options() map[string]interface{} {
	opts := make(map[string]interface{})
	if s.Default != nil {
		opts["default"] = s.Default
	}
	if s.ForceInput {
		opts["forceInput"] = true
	}
	if s.Multiline {
		opts["multiline"] = true
	}
	if s.Min != nil {
		opts["min"] = *s.Min
	}
	if s.Max != nil {
		opts["max"] = *s.Max
	}
	if s.Step != 0 {
		opts["step"] = s.Step
	}
	if s.Display != "" {
		opts["display"] = s.Display
	}
	if s.LabelOn != "" {
		opts["label_on"] = s.LabelOn
	}
	if s.LabelOff != "" {
		opts["label_off"] = s.LabelOff
	}
	if s.Placeholder != "" {
		opts["placeholder"] = s.Placeholder
	}
	return opts
}

// MarshalJSON writes the host's ["TYPE", {options}] tuple
func (s InputSpec) MarshalJSON() ([]byte, error) {
	var head interface{} = s.Type
	if len(s.Choices) > 0 {
		head = s.Choices
	}
	return json.Marshal([]interface{}{head, s.options()})
}

// Inputs is the ordered input schema of a node
type Inputs struct {
	Required []InputSpec
	Optional []InputSpec
}

// Lookup finds an input by name and reports whether it is optional
func (in Inputs) Lookup(name string) (spec InputSpec, optional bool, ok bool) {
	for _, s := range in.Required {
		if s.Name == name {
			return s, false, true
		}
	}
	for _, s := range in.Optional {
		if s.Name == name {
			return s, true, true
		}
	}
	return InputSpec{}, false, false
}

// orderedSpecs serializes specs as a JSON object keeping the declaration order
func orderedSpecs(specs []InputSpec) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range specs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes {"required": {...}, "optional": {...}} with keys in declaration order
func (in Inputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	req, err := orderedSpecs(in.Required)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"required":`)
	buf.Write(req)
	if len(in.Optional) > 0 {
		opt, err := orderedSpecs(in.Optional)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"optional":`)
		buf.Write(opt)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OutputSpec declares one output of a node. IsList outputs carry a sequence of values.
type OutputSpec struct {
	Name   string
	Type   string
	IsList bool
}
