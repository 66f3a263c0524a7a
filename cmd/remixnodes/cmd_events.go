package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/richinsley/remix2go/nodeserver"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the executions of a node server as they happen",
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, _ []string) error {
	c := nodeserver.NewClient(nodeServerAddr())
	events, ws, err := c.Events(10 * time.Second)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ws.ConnectionDone:
			return fmt.Errorf("connection to %s closed", nodeServerAddr())
		case msg := <-events:
			switch data := msg.Data.(type) {
			case *nodeserver.WSMessageDataExecuting:
				fmt.Fprintf(out, "%s executing %s\n", data.ExecutionID, data.Node)
			case *nodeserver.WSMessageDataExecuted:
				fmt.Fprintf(out, "%s executed %s (%d outputs)\n", data.ExecutionID, data.Node, len(data.Output))
			case *nodeserver.WSMessageExecutionError:
				fmt.Fprintf(out, "%s failed %s: %s: %s\n", data.ExecutionID, data.Node, data.ExceptionType, data.ExceptionMessage)
			}
		}
	}
}
