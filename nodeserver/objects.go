package nodeserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// RemoteObject is a node object as read back from /object_info
type RemoteObject struct {
	Input         *RemoteObjectInput `json:"input"`
	Output        []string           `json:"output"`
	OutputIsList  []bool             `json:"output_is_list"`
	OutputName    []string           `json:"output_name"`
	Name          string             `json:"name"`
	DisplayName   string             `json:"display_name"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	OutputNode    bool               `json:"output_node"`
	AlwaysChanged bool               `json:"always_changed"`
}

// RemoteInput is one declared input: its type (or combo choices) and its options
type RemoteInput struct {
	Name     string
	Type     string
	Choices  []string
	Options  map[string]interface{}
	Optional bool
}

// RemoteObjectInput keeps the inputs in their declaration order
type RemoteObjectInput struct {
	Required []RemoteInput
	Optional []RemoteInput
}

// Lookup returns the input called name
func (noi *RemoteObjectInput) Lookup(name string) (RemoteInput, bool) {
	for _, list := range [][]RemoteInput{noi.Required, noi.Optional} {
		for _, in := range list {
			if in.Name == name {
				return in, true
			}
		}
	}
	return RemoteInput{}, false
}

func (noi *RemoteObjectInput) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}

	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := t.(string)
		switch key {
		case "required", "optional":
			if _, err := dec.Token(); err != nil { // opening brace of the nested object
				return err
			}

			var current []RemoteInput
			for dec.More() {
				entryKeyToken, err := dec.Token()
				if err != nil {
					return err
				}
				raw := json.RawMessage{}
				if err := dec.Decode(&raw); err != nil {
					return err
				}
				in, err := parseRemoteInput(entryKeyToken.(string), raw)
				if err != nil {
					return err
				}
				in.Optional = key == "optional"
				current = append(current, in)
			}

			if _, err := dec.Token(); err != nil { // closing brace of the nested object
				return err
			}

			if key == "required" {
				noi.Required = current
			} else {
				noi.Optional = current
			}
		default:
			if err := dec.Decode(new(interface{})); err != nil { // skip unexpected fields
				return err
			}
		}
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	return nil
}

// parseRemoteInput reads a ["TYPE", {options}] or [["a", "b"], {options}] tuple
func parseRemoteInput(name string, raw json.RawMessage) (RemoteInput, error) {
	in := RemoteInput{Name: name}
	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil || len(tuple) == 0 {
		return in, fmt.Errorf("input %s: expected a type tuple", name)
	}

	if err := json.Unmarshal(tuple[0], &in.Type); err != nil {
		if err := json.Unmarshal(tuple[0], &in.Choices); err != nil {
			return in, fmt.Errorf("input %s: unknown type %s", name, tuple[0])
		}
		in.Type = "COMBO"
	}
	if len(tuple) > 1 {
		if err := json.Unmarshal(tuple[1], &in.Options); err != nil {
			return in, fmt.Errorf("input %s: options: %w", name, err)
		}
	}
	return in, nil
}

// RemoteObjects are the node objects of a server keyed by id
type RemoteObjects struct {
	Objects map[string]*RemoteObject
}

// GetNodeObjectByName returns the object with the id name, nil when unknown
func (n *RemoteObjects) GetNodeObjectByName(name string) *RemoteObject {
	if val, ok := n.Objects[name]; ok {
		return val
	}
	return nil
}

// GetNodeObjectsByCategory returns the objects whose category is category, sorted by id
func (n *RemoteObjects) GetNodeObjectsByCategory(category string) []*RemoteObject {
	var retv []*RemoteObject
	for _, o := range n.Objects {
		if o.Category == category {
			retv = append(retv, o)
		}
	}
	sort.Slice(retv, func(i, j int) bool { return retv[i].Name < retv[j].Name })
	return retv
}
