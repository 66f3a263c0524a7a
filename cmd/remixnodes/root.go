// remixnodes serves the RTX Remix nodes to a graph host and runs some of them from the command line.
//
// Usage:
//
//	remixnodes serve [--listen=<addr>]
//	remixnodes objects [--node=<id>]
//	remixnodes docs --readme=<path> [--section=<header>]
//	remixnodes ingest --type=<texture type> [--output=<folder>] <image>...
//	remixnodes run --server=<addr> <node> [name=value]...
//	remixnodes events --server=<addr>
//	remixnodes version
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/richinsley/remix2go/config"
	"github.com/richinsley/remix2go/nodes"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "remixnodes",
	Short: "RTX Remix nodes for ComfyUI style graph hosts",
	Long:  "remixnodes exposes the RTX Remix REST API as graph nodes.\nThe nodes are served over HTTP and some of them can be run directly.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "remixnodes.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides the configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// setup loads the configuration and installs the process logger
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch lc.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", lc.Format)
}

// newEnv returns the node environment described by c
func newEnv(c config.Config) *nodes.Env {
	return &nodes.Env{
		HTTPClient:     &http.Client{},
		TempDirectory:  c.Ingest.TempDirectory,
		DefaultAddress: c.Remix.Address,
		DefaultPort:    c.Remix.Port,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
