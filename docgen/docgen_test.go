package docgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pureNode(id, display, category, description string) *nodeapi.Descriptor {
	return &nodeapi.Descriptor{
		ID:          id,
		DisplayName: display,
		Category:    category,
		Description: description,
		Outputs:     []nodeapi.OutputSpec{{Name: "out", Type: nodeapi.TypeString}},
		Execute: func(ctx context.Context, args nodeapi.Args) (nodeapi.Result, error) {
			return nodeapi.Result{""}, nil
		},
	}
}

func TestRender(t *testing.T) {
	r := nodeapi.NewRegistry()
	r.MustRegister(pureNode("B", "Bee", "RTX Remix/layers", "Makes layers\nand more"))
	r.MustRegister(pureNode("A", "Ay", "RTX Remix/textures", ""))
	r.MustRegister(pureNode("C", "Cee", "RTX Remix/layers", "Other"))

	want := "### Textures\n" +
		"**Ay**\n" +
		"\n" +
		"### Layers\n" +
		"- **Bee**: Makes layers\n" +
		"- **Cee**: Other\n" +
		"\n"
	assert.Equal(t, want, Render(r, "## Nodes"))
}

func TestReplaceSection(t *testing.T) {
	doc := "# Title\n\n## Nodes\nold\n### Old group\nold too\n## Install\nkeep\n"

	out, err := ReplaceSection([]byte(doc), "## Nodes", "new\n")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\n## Nodes\nnew\n## Install\nkeep\n", string(out))
}

func TestReplaceSectionToEnd(t *testing.T) {
	out, err := ReplaceSection([]byte("## Nodes\nold\n# Higher is not same level\n"), "## Nodes", "new\n")
	require.NoError(t, err)
	assert.Equal(t, "## Nodes\nnew\n", string(out))
}

func TestReplaceSectionMissing(t *testing.T) {
	_, err := ReplaceSection([]byte("# Title\n"), "## Nodes", "new\n")
	assert.Error(t, err)
}

func TestUpdateReadme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# Remix\n## Nodes\n## License\nMIT\n"), 0o644))

	require.NoError(t, UpdateReadme(path, nodes.NewRegistry(nil), "## Nodes"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "### Layers\n")
	assert.Contains(t, s, "- **RTX Remix Get Layers**: ")
	assert.True(t, strings.HasSuffix(s, "## License\nMIT\n"))
	assert.Less(t, strings.Index(s, "### Layers"), strings.Index(s, "### Textures"))
}

func TestRenderNodeDescriptions(t *testing.T) {
	descriptions := map[string]string{
		"RTXRemixDeleteFile":                "Delete a file from the disk",
		"RTXRemixIngestTexture":             "Ingest an image as a texture and save it to disk",
		"RTXRemixDefineLayerId":             "Helper node to define a layer path relative to project or another layer",
		"RTXRemixCreateLayer":               "Create or Insert a sublayer in the current stage",
		"RTXRemixLayerType":                 "Select from a list of supported layer types.",
		"RTXRemixLayerTypes":                "Select multiple layer types from a list of supported layer types.",
		"RTXRemixGetLayers":                 "Query layer ids from the currently open project",
		"RTXRemixMuteLayer":                 "Mute or unmute a project layer",
		"RTXRemixRemoveLayer":               "Remove a layer from the project",
		"RTXRemixSaveLayer":                 "Save a project layer",
		"RTXRemixGetEditTarget":             "Get the edit target from the currently open project",
		"RTXRemixSetEditTarget":             "Designate the edit target on the open project to receive modifications",
		"RTXRemixGetTextures":               "Read the textures matching provided criteria from the currently open project",
		"RTXRemixTexturesTypes":             "Select multiple texture types from a list of supported texture types.",
		"RTXRemixTexturesType":              "Select from a list of supported texture types.",
		"RTXRemixSetTexture":                "Set the texture path on an asset",
		"RTXRemixTextureTypeToUSDAttribute": "Use this node to get the proper texture attribute on the same asset but for a different texture type",
	}

	out := Render(nodes.NewRegistry(nil), "## Nodes")
	for id, desc := range descriptions {
		name, ok := nodes.DisplayNames[id]
		require.True(t, ok, id)
		assert.Contains(t, out, "- **"+name+"**: "+desc+"\n", id)
	}
	assert.NotContains(t, out, "\n**RTX Remix Mute Layer**\n")
}
