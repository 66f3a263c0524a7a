package nodeapi

// NodeObject represents the metadata that describes how to generate an instance of a node for a graph.
// It is what the host reads from /object_info.
type NodeObject struct {
	Input         Inputs              `json:"input"`
	InputOrder    map[string][]string `json:"input_order"`
	Output        []string            `json:"output"` // output type
	OutputIsList  []bool              `json:"output_is_list"`
	OutputName    []string            `json:"output_name"`
	Name          string              `json:"name"`
	DisplayName   string              `json:"display_name"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	OutputNode    bool                `json:"output_node"`
	AlwaysChanged bool                `json:"always_changed"`
}

// Object returns the host facing metadata of the node
func (d *Descriptor) Object() *NodeObject {
	o := &NodeObject{
		Input:         d.Inputs,
		InputOrder:    map[string][]string{"required": specNames(d.Inputs.Required)},
		Output:        make([]string, 0, len(d.Outputs)),
		OutputIsList:  make([]bool, 0, len(d.Outputs)),
		OutputName:    make([]string, 0, len(d.Outputs)),
		Name:          d.ID,
		DisplayName:   d.DisplayName,
		Description:   d.Description,
		Category:      d.Category,
		OutputNode:    d.OutputNode,
		AlwaysChanged: d.AlwaysChanged,
	}
	if len(d.Inputs.Optional) > 0 {
		o.InputOrder["optional"] = specNames(d.Inputs.Optional)
	}
	for _, out := range d.Outputs {
		o.Output = append(o.Output, out.Type)
		o.OutputIsList = append(o.OutputIsList, out.IsList)
		o.OutputName = append(o.OutputName, out.Name)
	}
	return o
}

func specNames(specs []InputSpec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}
