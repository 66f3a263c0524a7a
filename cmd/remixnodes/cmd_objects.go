package main

import (
	"encoding/json"
	"fmt"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/nodes"
	"github.com/spf13/cobra"
)

var objectsNode string

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Print the node objects as JSON",
	RunE:  runObjects,
}

func init() {
	objectsCmd.Flags().StringVar(&objectsNode, "node", "", "print only this node")
}

func runObjects(cmd *cobra.Command, _ []string) error {
	r := nodes.NewRegistry(newEnv(cfg))

	var v interface{} = r.ObjectInfo()
	if objectsNode != "" {
		d, ok := r.Get(objectsNode)
		if !ok {
			return fmt.Errorf("%w: %s", nodeapi.ErrUnknownNode, objectsNode)
		}
		v = map[string]*nodeapi.NodeObject{objectsNode: d.Object()}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
