package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

// layer operations re-emit the id they changed so that they can be chained
var layerIDOutput = []nodeapi.OutputSpec{{Name: "layer_id", Type: nodeapi.TypeString}}

func layerNodes(env *Env) []*nodeapi.Descriptor {
	cat := category("layers")
	return []*nodeapi.Descriptor{
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixCreateLayer",
			DisplayName: displayName("RTXRemixCreateLayer"),
			Description: "Create or Insert a sublayer in the current stage",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "layer_type", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "replace_existing", Type: nodeapi.TypeBoolean, Default: false},
					{Name: "set_edit_target", Type: nodeapi.TypeBoolean, Default: true},
					{Name: "sublayer_position", Type: nodeapi.TypeInt, Default: -1, Min: nodeapi.IntPtr(-1)},
					{Name: "create_or_insert", Type: nodeapi.TypeBoolean, Default: true, LabelOn: "create", LabelOff: "insert"},
				},
				Optional: []nodeapi.InputSpec{
					{Name: "parent_layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "layer_id", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				layerType := args.String("layer_type")
				req := remixapi.CreateLayerRequest{
					LayerPath:        remixapi.NormalizePath(args.String("layer_id")),
					CreateOrInsert:   args.Bool("create_or_insert"),
					SetEditTarget:    args.Bool("set_edit_target"),
					SublayerPosition: args.Int("sublayer_position"),
					ReplaceExisting:  args.Bool("replace_existing"),
				}
				if layerType != "" && layerType != NoneType {
					req.LayerType = &layerType
				}
				if parent := remixapi.NormalizePath(args.String("parent_layer_id")); parent != "" {
					req.ParentLayerID = &parent
				}
				if err := env.client(rc).CreateLayer(ctx, req); err != nil {
					return nil, err
				}
				return nodeapi.Result{args.String("layer_id")}, nil
			},
		}),
		{
			ID:          "RTXRemixDefineLayerId",
			DisplayName: displayName("RTXRemixDefineLayerId"),
			Description: "Helper node to define a layer path relative to project or another layer",
			Category:    cat,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "name", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "parent_layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
				Optional: []nodeapi.InputSpec{
					{Name: "directories", Type: nodeapi.TypeString, Default: ""},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "layer_id", Type: nodeapi.TypeString}},
			Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
				return nodeapi.Result{DefineLayerID(args.String("parent_layer_id"), args.String("directories"), args.String("name"))}, nil
			},
		},
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixLayerType",
			DisplayName: displayName("RTXRemixLayerType"),
			Description: "Select from a list of supported layer types.",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "layer_type", Choices: LayerTypeValues, Default: LayerTypeValues[0]}},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "layer_type", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				layerType := args.String("layer_type")
				if err := validateLayerTypes(ctx, env.client(rc), []string{layerType}); err != nil {
					return nil, err
				}
				return nodeapi.Result{layerType}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixLayerTypes",
			DisplayName: displayName("RTXRemixLayerTypes"),
			Description: "Select multiple layer types from a list of supported layer types.",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "layer_types", Type: nodeapi.TypeString, Multiline: true, Default: strings.Join(LayerTypeValues, ",")},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "layer_types", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				layerTypes := args.String("layer_types")
				if err := validateLayerTypes(ctx, env.client(rc), splitList(layerTypes, ",")); err != nil {
					return nil, err
				}
				return nodeapi.Result{layerTypes}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:            "RTXRemixGetLayers",
			DisplayName:   displayName("RTXRemixGetLayers"),
			Description:   "Query layer ids from the currently open project",
			Category:      cat,
			Gated:         true,
			AlwaysChanged: true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "layer_types", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "layer_count", Type: nodeapi.TypeInt, Default: -1, Min: nodeapi.IntPtr(-1)},
					{Name: "sublayers", Type: nodeapi.TypeBoolean, Default: true, LabelOn: "all", LabelOff: "immediate only"},
					{Name: "crash_if_not_exist", Type: nodeapi.TypeBoolean, Default: true},
				},
				Optional: []nodeapi.InputSpec{
					{Name: "parent_layer_id", Type: nodeapi.TypeString, ForceInput: true},
					{Name: "regex_filter", Type: nodeapi.TypeString, ForceInput: true},
				},
			},
			Outputs: []nodeapi.OutputSpec{
				{Name: "layer_ids", Type: nodeapi.TypeString, IsList: true},
				{Name: "layer_types", Type: nodeapi.TypeString, IsList: true},
				{Name: "all_layer_type_exist", Type: nodeapi.TypeBoolean},
			},
			Empty: nodeapi.Result{[]string{}, []string{}, false},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				layerTypes := splitList(args.String("layer_types"), ",")

				var filter *regexp.Regexp
				if pattern := args.String("regex_filter"); pattern != "" {
					re, err := regexp.Compile("^(?:" + pattern + ")")
					if err != nil {
						return nil, fmt.Errorf("%w: regex_filter %q: %v", nodeapi.ErrInvalidArgument, pattern, err)
					}
					filter = re
				}

				query := remixapi.LayerQuery{
					LayerTypes:    layerTypes,
					LayerCount:    args.Int("layer_count"),
					ParentLayerID: args.String("parent_layer_id"),
				}
				client := env.client(rc)
				layers, err := client.GetLayers(ctx, query)
				if err != nil {
					return nil, err
				}

				if len(layers) == 0 {
					if args.Bool("crash_if_not_exist") {
						return nil, fmt.Errorf("%w: no layers found, please check the parameters of your node (URL %s, layer types %v, parent %q)",
							remixapi.ErrEmptyResult, client.BaseURL(), layerTypes, query.ParentLayerID)
					}
					slog.Debug("no layer found", "layer_types", layerTypes, "parent", query.ParentLayerID)
					return nodeapi.Result{[]string{}, []string{}, false}, nil
				}

				ids, types := FlattenLayers(layers, args.Bool("sublayers"), filter)
				return nodeapi.Result{ids, types, len(ids) > 0}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixMuteLayer",
			DisplayName: displayName("RTXRemixMuteLayer"),
			Description: "Mute or unmute a project layer",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "mute", Type: nodeapi.TypeBoolean, Default: true, LabelOn: "mute", LabelOff: "unmute"},
				},
			},
			Outputs: layerIDOutput,
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				if err := env.client(rc).MuteLayer(ctx, args.String("layer_id"), args.Bool("mute")); err != nil {
					return nil, err
				}
				return nodeapi.Result{args.String("layer_id")}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixRemoveLayer",
			DisplayName: displayName("RTXRemixRemoveLayer"),
			Description: "Remove a layer from the project",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "parent_layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
			},
			Outputs: layerIDOutput,
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				if err := env.client(rc).RemoveLayer(ctx, args.String("layer_id"), args.String("parent_layer_id")); err != nil {
					return nil, err
				}
				return nodeapi.Result{args.String("layer_id")}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixSaveLayer",
			DisplayName: displayName("RTXRemixSaveLayer"),
			Description: "Save a project layer",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""}},
			},
			Outputs: layerIDOutput,
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				if err := env.client(rc).SaveLayer(ctx, args.String("layer_id")); err != nil {
					return nil, err
				}
				return nodeapi.Result{args.String("layer_id")}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:            "RTXRemixGetEditTarget",
			DisplayName:   displayName("RTXRemixGetEditTarget"),
			Description:   "Get the edit target from the currently open project",
			Category:      cat,
			Gated:         true,
			AlwaysChanged: true,
			Outputs:       []nodeapi.OutputSpec{{Name: "layer_id", Type: nodeapi.TypeString}},
			Empty:         nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				target, err := env.client(rc).GetEditTarget(ctx)
				if err != nil {
					return nil, err
				}
				return nodeapi.Result{target}, nil
			},
		}),
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixSetEditTarget",
			DisplayName: displayName("RTXRemixSetEditTarget"),
			Description: "Designate the edit target on the open project to receive modifications",
			Category:    cat,
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "layer_id", Type: nodeapi.TypeString, ForceInput: true, Default: ""}},
			},
			Outputs: layerIDOutput,
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				if err := env.client(rc).SetEditTarget(ctx, args.String("layer_id")); err != nil {
					return nil, err
				}
				return nodeapi.Result{args.String("layer_id")}, nil
			},
		}),
	}
}

// DefineLayerID joins directories and name to the directory holding parent. An empty parent
// resolves relative to the current directory, which is dropped from the result.
func DefineLayerID(parent string, directories string, name string) string {
	p := remixapi.NormalizePath(parent)
	dir := "."
	if i := strings.LastIndex(p, "/"); i == 0 {
		dir = "/"
	} else if i > 0 {
		dir = p[:i]
	}
	parts := []string{dir}
	if directories != "" {
		parts = append(parts, directories)
	}
	parts = append(parts, name)
	return remixapi.NormalizePath(strings.Join(parts, "/"))
}

// FlattenLayers walks the layer trees breadth first. Ids are unescaped and normalized; an id
// already seen is skipped along with its children. With sublayers false only the roots are
// visited. filter, when set, selects the ids kept in the output. Children of rejected layers
// are still visited.
func FlattenLayers(roots []remixapi.Layer, sublayers bool, filter *regexp.Regexp) (ids []string, types []string) {
	ids = []string{}
	types = []string{}
	seen := map[string]struct{}{}
	queue := append([]remixapi.Layer(nil), roots...)
	for len(queue) > 0 {
		layer := queue[0]
		queue = queue[1:]
		id := remixapi.NormalizePath(remixapi.UnescapeLayerID(layer.LayerID))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if filter == nil || filter.MatchString(id) {
			ids = append(ids, id)
			types = append(types, layerTypeName(layer.LayerType))
		}
		if sublayers {
			queue = append(queue, layer.Children...)
		}
	}
	return ids, types
}

func layerTypeName(t *string) string {
	if t == nil || *t == "" {
		return NoneType
	}
	return *t
}
