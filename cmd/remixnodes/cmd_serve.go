package main

import (
	"os/signal"
	"syscall"

	"github.com/richinsley/remix2go/nodes"
	"github.com/richinsley/remix2go/nodeserver"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the nodes over HTTP",
	Long: `Serves /object_info, /execute and the /ws execution stream.
The server stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides server.listen")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := nodeserver.New(nodes.NewRegistry(newEnv(cfg)))
	return srv.ListenAndServe(ctx, addr)
}
