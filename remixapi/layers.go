package remixapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Layer is one entry of the layer tree returned by the service
type Layer struct {
	LayerID   string  `json:"layer_id"`
	LayerType *string `json:"layer_type"`
	Children  []Layer `json:"children"`
}

// LayerQuery selects layers. LayerCount -1 means unlimited.
// When ParentLayerID is set only the sublayers of that layer are returned.
type LayerQuery struct {
	LayerTypes    []string
	LayerCount    int
	ParentLayerID string
}

func (q LayerQuery) values() url.Values {
	v := url.Values{}
	for _, t := range q.LayerTypes {
		v.Add("layer_types", t)
	}
	v.Set("layer_count", strconv.Itoa(q.LayerCount))
	return v
}

// CreateLayerRequest is the body of a layer creation or insertion.
// nil LayerType and ParentLayerID are sent as null.
type CreateLayerRequest struct {
	LayerPath        string  `json:"layer_path"`
	LayerType        *string `json:"layer_type"`
	SetEditTarget    bool    `json:"set_edit_target"`
	SublayerPosition int     `json:"sublayer_position"`
	ParentLayerID    *string `json:"parent_layer_id"`
	CreateOrInsert   bool    `json:"create_or_insert"`
	ReplaceExisting  bool    `json:"replace_existing"`
}

// GetLayerTypes returns the layer types the service currently accepts
func (c *RemixClient) GetLayerTypes(ctx context.Context) ([]string, error) {
	var out struct {
		LayerTypes []string `json:"layer_types"`
	}
	if err := c.do(ctx, http.MethodGet, "stagecraft/layers/types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.LayerTypes, nil
}

// GetLayers returns the root entries of the matching layer tree
func (c *RemixClient) GetLayers(ctx context.Context, q LayerQuery) ([]Layer, error) {
	endpoint := "stagecraft/layers"
	if q.ParentLayerID != "" {
		endpoint = fmt.Sprintf("stagecraft/layers/%s/sublayers", EscapeLayerID(q.ParentLayerID))
	}

	var out struct {
		Layers []Layer `json:"layers"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Layers, nil
}

// CreateLayer creates a new sublayer or inserts an existing layer file in the stage
func (c *RemixClient) CreateLayer(ctx context.Context, req CreateLayerRequest) error {
	return c.do(ctx, http.MethodPost, "stagecraft/layers", nil, req, nil)
}

// MuteLayer mutes or unmutes a layer
func (c *RemixClient) MuteLayer(ctx context.Context, layerID string, mute bool) error {
	body := map[string]bool{"value": mute}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("stagecraft/layers/%s/mute", EscapeLayerID(layerID)), nil, body, nil)
}

// RemoveLayer removes layerID from the sublayers of parentLayerID
func (c *RemixClient) RemoveLayer(ctx context.Context, layerID string, parentLayerID string) error {
	body := map[string]string{"parent_layer_id": NormalizePath(parentLayerID)}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("stagecraft/layers/%s", EscapeLayerID(layerID)), nil, body, nil)
}

// SaveLayer writes a layer to disk
func (c *RemixClient) SaveLayer(ctx context.Context, layerID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("stagecraft/layers/%s/save", EscapeLayerID(layerID)), nil, nil, nil)
}

// GetEditTarget returns the unescaped id of the layer currently receiving edits
func (c *RemixClient) GetEditTarget(ctx context.Context) (string, error) {
	var out struct {
		LayerID string `json:"layer_id"`
	}
	if err := c.do(ctx, http.MethodGet, "stagecraft/layers/target", nil, nil, &out); err != nil {
		return "", err
	}
	return UnescapeLayerID(out.LayerID), nil
}

// SetEditTarget makes layerID the layer receiving edits
func (c *RemixClient) SetEditTarget(ctx context.Context, layerID string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("stagecraft/layers/target/%s", EscapeLayerID(layerID)), nil, nil, nil)
}
