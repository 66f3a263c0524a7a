package remixapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	// ConvertToDDSPlugin is the check plugin that produces the ingested texture
	ConvertToDDSPlugin = "ConvertToDDS"
	// IngestionOutputChannel is the data flow channel carrying the ingested files
	IngestionOutputChannel = "ingestion_output"
)

// IngestInput is a file queued for ingestion together with its texture type
type IngestInput struct {
	Path        string
	TextureType string
}

func (i IngestInput) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{i.Path, i.TextureType})
}

func (i *IngestInput) UnmarshalJSON(b []byte) error {
	var tmp []string
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	if len(tmp) != 2 {
		return fmt.Errorf("input file entry must have 2 elements, got %d", len(tmp))
	}
	i.Path = tmp[0]
	i.TextureType = tmp[1]
	return nil
}

// MaterialIngestion is a request to the material mass validator
type MaterialIngestion struct {
	InputFiles      []IngestInput
	OutputDirectory string
}

func (m MaterialIngestion) MarshalJSON() ([]byte, error) {
	type data struct {
		InputFiles      []IngestInput `json:"input_files"`
		OutputDirectory string        `json:"output_directory"`
	}
	type plugin struct {
		Data data `json:"data"`
	}
	return json.Marshal(struct {
		ContextPlugin plugin `json:"context_plugin"`
	}{
		ContextPlugin: plugin{Data: data{InputFiles: m.InputFiles, OutputDirectory: m.OutputDirectory}},
	})
}

type DataFlow struct {
	Channel    string   `json:"channel"`
	OutputData []string `json:"output_data"`
}

type CheckPlugin struct {
	Name string `json:"name"`
	Data struct {
		DataFlows []DataFlow `json:"data_flows"`
	} `json:"data"`
}

type CompletedSchema struct {
	CheckPlugins []CheckPlugin `json:"check_plugins"`
}

// IngestionResult is the answer of the mass validator once every schema ran
type IngestionResult struct {
	CompletedSchemas []CompletedSchema `json:"completed_schemas"`
}

// OutputFiles returns the output data of the first flow on channel of the first plugin named
// plugin, looking at each completed schema in turn until one yields files.
func (r *IngestionResult) OutputFiles(plugin string, channel string) []string {
	for _, schema := range r.CompletedSchemas {
		var results []string
		for _, cp := range schema.CheckPlugins {
			if cp.Name != plugin {
				continue
			}
			for _, flow := range cp.Data.DataFlows {
				if flow.Channel != channel {
					continue
				}
				results = flow.OutputData
				break
			}
			// only the first matching plugin of a schema is considered
			break
		}
		if len(results) > 0 {
			return results
		}
	}
	return nil
}

// QueueMaterialIngestion runs the material validator on the given files and waits for the result
func (c *RemixClient) QueueMaterialIngestion(ctx context.Context, m MaterialIngestion) (*IngestionResult, error) {
	out := &IngestionResult{}
	if err := c.do(ctx, http.MethodPost, "ingestcraft/mass-validator/queue/material", nil, m, out); err != nil {
		return nil, err
	}
	return out, nil
}
