package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/richinsley/remix2go/imagetensor"
	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/nodes"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	ingestType   string
	ingestOutput string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <image>...",
	Short: "Ingest images as textures of the configured Remix service",
	Long: `Ingests every image as a texture of the given type and prints the path of the converted
texture. The texture type is checked against the types the service supports first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestType, "type", "DIFFUSE", "texture type")
	ingestCmd.Flags().StringVar(&ingestOutput, "output", "", "output folder, the project default when empty")
}

func runIngest(cmd *cobra.Command, files []string) error {
	r := nodes.NewRegistry(newEnv(cfg))
	rc := nodeapi.RemixContext{Address: cfg.Remix.Address, Port: cfg.Remix.Port}
	ctx := cmd.Context()

	if _, err := r.Execute(ctx, "RTXRemixTexturesType", nodeapi.Args{"context": rc, "texture_type": ingestType}); err != nil {
		return err
	}

	bar := progressbar.Default(int64(len(files)), "ingesting")
	var paths []string
	for _, file := range files {
		tex, err := imagetensor.Load(file)
		if err != nil {
			return err
		}
		res, err := r.Execute(ctx, "RTXRemixIngestTexture", nodeapi.Args{
			"context":                       rc,
			"texture":                       tex,
			"texture_type":                  ingestType,
			"texture_name":                  strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
			"enable_override_output_folder": ingestOutput != "",
			"override_output_folder":        ingestOutput,
		})
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", file, err)
		}
		paths = append(paths, res[1].(string))
		bar.Add(1)
	}
	bar.Finish()

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
