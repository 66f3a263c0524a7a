package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richinsley/remix2go/nodeserver"
	"github.com/spf13/cobra"
)

var serverAddr string

var runCmd = &cobra.Command{
	Use:   "run <node> [name=value]...",
	Short: "Run one node on a node server",
	Long: `Runs a node on the server given by --server and prints its outputs, one JSON value per line.
Values are parsed as JSON when they can be, as strings otherwise, so that
context={"address":"127.0.0.1","port":8011} and layer_types=workfile both work.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&serverAddr, "server", "", "node server address, server.listen when empty")
	eventsCmd.Flags().StringVar(&serverAddr, "server", "", "node server address, server.listen when empty")
}

func nodeServerAddr() string {
	if serverAddr != "" {
		return serverAddr
	}
	return cfg.Server.Listen
}

// parseInputs reads name=value pairs
func parseInputs(pairs []string) (map[string]interface{}, error) {
	inputs := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		inputs[name] = v
	}
	return inputs, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	inputs, err := parseInputs(args[1:])
	if err != nil {
		return err
	}

	c := nodeserver.NewClient(nodeServerAddr())
	out, err := c.Execute(cmd.Context(), args[0], inputs)
	if err != nil {
		return err
	}
	for _, o := range out.Outputs {
		fmt.Fprintln(cmd.OutOrStdout(), string(o))
	}
	return nil
}
