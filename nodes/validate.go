package nodes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/richinsley/remix2go/remixapi"
)

// LayerTypeValues are the layer types offered in the UI
var LayerTypeValues = []string{"autoupscale", "capture_baker", "capture", "replacement", "workfile", NoneType}

// TextureTypeValues are the texture types offered in the UI
var TextureTypeValues = []string{
	"DIFFUSE",
	"ROUGHNESS",
	"ANISOTROPY",
	"METALLIC",
	"EMISSIVE",
	"NORMAL_OGL",
	"NORMAL_DX",
	"NORMAL_OTH",
	"HEIGHT",
	"TRANSMITTANCE",
	"MEASUREMENT_DISTANCE",
	"SINGLE_SCATTERING",
	"OTHER",
}

// validateLayerTypes checks layerTypes against the types the service accepts. NoneType is
// always valid.
func validateLayerTypes(ctx context.Context, c *remixapi.RemixClient, layerTypes []string) error {
	valid, err := c.GetLayerTypes(ctx)
	if err != nil {
		return err
	}
	return checkTypes("layer type", layerTypes, valid, NoneType)
}

// validateTextureTypes checks textureTypes against the types the service accepts
func validateTextureTypes(ctx context.Context, c *remixapi.RemixClient, textureTypes []string) error {
	valid, err := c.GetTextureTypes(ctx)
	if err != nil {
		return err
	}
	return checkTypes("texture type", textureTypes, valid, "")
}

// checkTypes checks every requested value against the set valid. sentinel, when not empty,
// is always accepted. Empty values are ignored.
func checkTypes(kind string, requested []string, valid []string, sentinel string) error {
	set := make(map[string]struct{}, len(valid)+1)
	for _, v := range valid {
		set[v] = struct{}{}
	}
	if sentinel != "" {
		set[sentinel] = struct{}{}
	}
	for _, r := range requested {
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			continue
		}
		names := make([]string, 0, len(set))
		for k := range set {
			names = append(names, k)
		}
		sort.Strings(names)
		return fmt.Errorf("%w: wrong %s value %s. Only those values are supported: %s",
			remixapi.ErrInvalidType, kind, r, strings.Join(names, ","))
	}
	return nil
}
