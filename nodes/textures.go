package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/richinsley/remix2go/imagetensor"
	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

func textureNodes(env *Env) []*nodeapi.Descriptor {
	cat := category("textures")
	return []*nodeapi.Descriptor{
		nodeapi.Threaded(nodeapi.Node{
			ID:            "RTXRemixGetTextures",
			DisplayName:   displayName("RTXRemixGetTextures"),
			Description:   "Read the textures matching provided criteria from the currently open project",
			Category:      cat,
			Gated:         true,
			AlwaysChanged: true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "return_selection", Type: nodeapi.TypeBoolean, Default: false, LabelOn: "enabled", LabelOff: "disabled"},
					{Name: "filter_session_prims", Type: nodeapi.TypeBoolean, Default: false, LabelOn: "enabled", LabelOff: "disabled"},
				},
				Optional: []nodeapi.InputSpec{
					{
						Name:        "asset_hashes",
						Type:        nodeapi.TypeString,
						Multiline:   true,
						Default:     "",
						Placeholder: "A set of asset hashes to keep when filtering material asset paths",
					},
					{Name: "texture_types", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "exists", Type: nodeapi.TypeBoolean, Default: false},
				},
			},
			Outputs: []nodeapi.OutputSpec{
				{Name: "usd_attributes", Type: nodeapi.TypeString, IsList: true},
				{Name: "texture_names", Type: nodeapi.TypeString, IsList: true},
				{Name: "textures", Type: nodeapi.TypeImage, IsList: true},
			},
			Empty: nodeapi.Result{[]string{}, []string{}, []*imagetensor.Tensor{}},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				q := remixapi.TextureQuery{
					Selection:          args.Bool("return_selection"),
					FilterSessionPrims: args.Bool("filter_session_prims"),
					Exists:             args.Bool("exists"),
					AssetHashes:        splitList(args.String("asset_hashes"), ","),
					TextureTypes:       splitList(args.String("texture_types"), ","),
					LayerIdentifier:    args.String("layer_id"),
				}
				client := env.client(rc)
				textures, err := client.GetTextures(ctx, q)
				if err != nil {
					return nil, err
				}
				if len(textures) == 0 {
					return nil, fmt.Errorf("%w: no textures found, please check the parameters of your node (URL %s, params %+v)",
						remixapi.ErrEmptyResult, client.BaseURL(), q)
				}

				attrs, names, images, err := LoadTextures(textures)
				if err != nil {
					return nil, err
				}
				return nodeapi.Result{attrs, names, images}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixTexturesTypes",
			DisplayName: displayName("RTXRemixTexturesTypes"),
			Description: "Select multiple texture types from a list of supported texture types.",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "texture_types", Type: nodeapi.TypeString, Multiline: true, Default: strings.Join(TextureTypeValues, ",")},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "texture_types", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				textureTypes := args.String("texture_types")
				if err := validateTextureTypes(ctx, env.client(rc), splitList(textureTypes, ",")); err != nil {
					return nil, err
				}
				return nodeapi.Result{textureTypes}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixTexturesType",
			DisplayName: displayName("RTXRemixTexturesType"),
			Description: "Select from a list of supported texture types.",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "texture_type", Choices: TextureTypeValues, Default: TextureTypeValues[0]}},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "texture_type", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				textureType := args.String("texture_type")
				if err := validateTextureTypes(ctx, env.client(rc), []string{textureType}); err != nil {
					return nil, err
				}
				return nodeapi.Result{textureType}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixSetTexture",
			DisplayName: displayName("RTXRemixSetTexture"),
			Description: "Set the texture path on an asset",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "usd_attribute", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "texture_path", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
				Optional: []nodeapi.InputSpec{
					{Name: "force", Type: nodeapi.TypeBoolean, Default: false, LabelOn: "enabled", LabelOff: "disabled"},
				},
			},
			Empty: nodeapi.Result{},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				textures := []remixapi.TextureAsset{{USDAttribute: args.String("usd_attribute"), Path: args.String("texture_path")}}
				if err := env.client(rc).SetTextures(ctx, args.Bool("force"), textures); err != nil {
					return nil, err
				}
				return nodeapi.Result{}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixTextureTypeToUSDAttribute",
			DisplayName: displayName("RTXRemixTextureTypeToUSDAttribute"),
			Description: "Use this node to get the proper texture attribute on the same asset but for a different texture type",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "usd_attribute", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "texture_type", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "usd_attribute", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				attr, textureType := args.String("usd_attribute"), args.String("texture_type")
				paths, err := env.client(rc).GetMaterialInputs(ctx, attr, textureType)
				if err != nil {
					return nil, err
				}
				if len(paths) == 0 {
					return nil, fmt.Errorf("%w: can't get texture type using the USD attribute %s and texture type %s",
						remixapi.ErrEmptyResult, attr, textureType)
				}
				return nodeapi.Result{paths[0]}, nil
			},
		}),
	}
}

// LoadTextures reads every texture present on disk. Missing files are skipped; it fails with
// ErrEmptyResult when none is left.
func LoadTextures(textures []remixapi.TextureAsset) (attrs []string, names []string, images []*imagetensor.Tensor, err error) {
	attrs, names, images = []string{}, []string{}, []*imagetensor.Tensor{}
	for _, t := range textures {
		if _, err := os.Stat(t.Path); err != nil {
			slog.Debug("texture not on disk, skipping", "path", t.Path, "error", err)
			continue
		}
		img, err := imagetensor.Load(t.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading texture %s: %w", t.Path, err)
		}
		attrs = append(attrs, t.USDAttribute)
		names = append(names, textureStem(t.Path))
		images = append(images, img)
	}

	if len(images) == 0 {
		paths := make([]string, len(textures))
		for i, t := range textures {
			paths[i] = t.Path
		}
		return nil, nil, nil, fmt.Errorf("%w: no textures found on disk, paths: %s", remixapi.ErrEmptyResult, strings.Join(paths, ", "))
	}
	return attrs, names, images, nil
}

// textureStem is the file name of p without its last extension
func textureStem(p string) string {
	base := path.Base(remixapi.NormalizePath(p))
	return strings.TrimSuffix(base, path.Ext(base))
}
