package remixapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// TextureAsset pairs a USD attribute with the texture file it points at.
// On the wire it is a two element array.
type TextureAsset struct {
	USDAttribute string
	Path         string
}

func (t *TextureAsset) UnmarshalJSON(b []byte) error {
	var tmp []string
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	if len(tmp) != 2 {
		return fmt.Errorf("texture entry must have 2 elements, got %d", len(tmp))
	}
	t.USDAttribute = tmp[0]
	t.Path = tmp[1]
	return nil
}

func (t TextureAsset) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{t.USDAttribute, t.Path})
}

// TextureQuery selects textures of the open project
type TextureQuery struct {
	Selection          bool
	FilterSessionPrims bool
	Exists             bool
	AssetHashes        []string
	TextureTypes       []string
	LayerIdentifier    string
}

func (q TextureQuery) values() url.Values {
	v := url.Values{}
	v.Set("selection", strconv.FormatBool(q.Selection))
	v.Set("filter_session_prims", strconv.FormatBool(q.FilterSessionPrims))
	v.Set("exists", strconv.FormatBool(q.Exists))
	for _, h := range q.AssetHashes {
		v.Add("asset_hashes", h)
	}
	for _, t := range q.TextureTypes {
		v.Add("texture_types", t)
	}
	if q.LayerIdentifier != "" {
		v.Set("layer_identifier", NormalizePath(q.LayerIdentifier))
	}
	return v
}

// GetTextureTypes returns the texture types the service currently accepts
func (c *RemixClient) GetTextureTypes(ctx context.Context) ([]string, error) {
	var out struct {
		TextureTypes []string `json:"texture_types"`
	}
	if err := c.do(ctx, http.MethodGet, "stagecraft/textures/types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.TextureTypes, nil
}

// GetTextures returns the textures matching q
func (c *RemixClient) GetTextures(ctx context.Context, q TextureQuery) ([]TextureAsset, error) {
	var out struct {
		Textures []TextureAsset `json:"textures"`
	}
	if err := c.do(ctx, http.MethodGet, "stagecraft/textures", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Textures, nil
}

// SetTextures points every attribute at its new texture file. Without force the service
// checks that the files were ingested.
func (c *RemixClient) SetTextures(ctx context.Context, force bool, textures []TextureAsset) error {
	body := struct {
		Force    bool           `json:"force"`
		Textures []TextureAsset `json:"textures"`
	}{
		Force:    force,
		Textures: textures,
	}
	return c.do(ctx, http.MethodPut, "stagecraft/textures", nil, body, nil)
}

// GetMaterialInputs returns the attributes of the material bound to usdAttribute that take
// a texture of textureType
func (c *RemixClient) GetMaterialInputs(ctx context.Context, usdAttribute string, textureType string) ([]string, error) {
	v := url.Values{}
	v.Set("texture_type", textureType)

	var out struct {
		AssetPaths []string `json:"asset_paths"`
	}
	endpoint := fmt.Sprintf("stagecraft/textures/%s/material/inputs", escapeAttributePath(usdAttribute))
	if err := c.do(ctx, http.MethodGet, endpoint, v, nil, &out); err != nil {
		return nil, err
	}
	return out.AssetPaths, nil
}

// GetDefaultDirectory returns the directory the project stores ingested assets in
func (c *RemixClient) GetDefaultDirectory(ctx context.Context) (string, error) {
	var out struct {
		AssetPath string `json:"asset_path"`
	}
	if err := c.do(ctx, http.MethodGet, "stagecraft/assets/default-directory", nil, nil, &out); err != nil {
		return "", err
	}
	return out.AssetPath, nil
}
