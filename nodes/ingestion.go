package nodes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/richinsley/remix2go/imagetensor"
	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

func ingestionNodes(env *Env) []*nodeapi.Descriptor {
	return []*nodeapi.Descriptor{
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixIngestTexture",
			DisplayName: displayName("RTXRemixIngestTexture"),
			Description: "Ingest an image as a texture and save it to disk",
			Category:    category("ingestion"),
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{
					{Name: "texture", Type: nodeapi.TypeImage},
					{Name: "texture_type", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
					{Name: "texture_name", Type: nodeapi.TypeString, ForceInput: true, Default: ""},
				},
				Optional: []nodeapi.InputSpec{
					{Name: "enable_override_output_folder", Type: nodeapi.TypeBoolean, Default: false, LabelOn: "enabled", LabelOff: "disabled"},
					{Name: "override_output_folder", Type: nodeapi.TypeString, Default: ""},
				},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "texture_path", Type: nodeapi.TypeString}},
			Empty:   nodeapi.Result{""},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				ing := &Ingester{Client: env.client(rc), TempDirectory: env.tempDirectory()}
				outputFolder := ""
				if args.Bool("enable_override_output_folder") {
					outputFolder = args.String("override_output_folder")
					if outputFolder == "" {
						return nil, fmt.Errorf("%w: can't overwrite output folder, no folder given", remixapi.ErrFileNotFound)
					}
				}
				texturePath, err := ing.IngestTexture(ctx, args.Image("texture"), args.String("texture_type"), args.String("texture_name"), outputFolder)
				if err != nil {
					return nil, err
				}
				return nodeapi.Result{texturePath}, nil
			},
		}),
	}
}

// Ingester sends images through the material ingestion of a Remix service
type Ingester struct {
	Client *remixapi.RemixClient
	// TempDirectory receives the image while the service ingests it
	TempDirectory string
}

// IngestTexture writes tex to a temporary PNG, ingests it as textureType and returns the path of
// the ingested texture. The output goes to outputFolder, which must exist, or to the default
// directory of the project when outputFolder is empty. The temporary file is always removed.
func (i *Ingester) IngestTexture(ctx context.Context, tex *imagetensor.Tensor, textureType string, textureName string, outputFolder string) (string, error) {
	if tex == nil {
		return "", fmt.Errorf("texture: %w", nodeapi.ErrMissingArgument)
	}

	if outputFolder != "" {
		if _, err := os.Stat(outputFolder); err != nil {
			return "", fmt.Errorf("%w: can't overwrite output folder, folder %s doesn't exist", remixapi.ErrFileNotFound, outputFolder)
		}
	} else {
		dir, err := i.Client.GetDefaultDirectory(ctx)
		if err != nil {
			return "", err
		}
		outputFolder = dir
	}

	tmp := i.tempPath(textureName)
	defer removeTemp(tmp)
	if err := tex.Save(tmp); err != nil {
		return "", fmt.Errorf("writing %s: %w", tmp, err)
	}

	slog.Debug("ingesting texture", "file", tmp, "type", textureType, "output", outputFolder)
	res, err := i.Client.QueueMaterialIngestion(ctx, remixapi.MaterialIngestion{
		InputFiles:      []remixapi.IngestInput{{Path: tmp, TextureType: textureType}},
		OutputDirectory: outputFolder,
	})
	if err != nil {
		return "", err
	}

	files := res.OutputFiles(remixapi.ConvertToDDSPlugin, remixapi.IngestionOutputChannel)
	if len(files) == 0 {
		return "", fmt.Errorf("%w: can't get the ingested texture with name %s from the folder %s", remixapi.ErrEmptyResult, textureName, outputFolder)
	}
	if _, err := os.Stat(files[0]); err != nil {
		return "", fmt.Errorf("%w: can't find the texture %s", remixapi.ErrFileNotFound, files[0])
	}
	return files[0], nil
}

func (i *Ingester) tempPath(textureName string) string {
	dir := i.TempDirectory
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Base(strings.ReplaceAll(textureName, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "texture"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, uuid.NewString()))
}

func removeTemp(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("can't remove temporary texture", "path", p, "error", err)
	}
}
