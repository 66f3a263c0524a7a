// Package nodeapi describes nodes the way the graph host consumes them and threads the Remix
// connection context through them.
//
// A node is a Descriptor: a stable identifier, display metadata, an ordered input schema, an
// ordered output schema and an Execute function taking keyword arguments. Descriptors of
// side-effecting nodes are built with Threaded, which prepends a REMIX_CONTEXT input and output
// (and optionally an "enabled" gate) so that the data dependencies of the graph order the remote
// calls.
package nodeapi

import (
	"errors"
	"fmt"
)

// Type names understood by the graph host
const (
	TypeString  = "STRING"
	TypeInt     = "INT"
	TypeFloat   = "FLOAT"
	TypeBoolean = "BOOLEAN"
	TypeImage   = "IMAGE"
	TypeCombo   = "COMBO"
	TypeAny     = "*"
	// TypeContext is the connection context threaded through every remote node
	TypeContext = "REMIX_CONTEXT"
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownNode     = errors.New("unknown node")
)

// RemixContext identifies the Remix service a chain of nodes talks to.
// It is a value: nodes pass it along unchanged.
type RemixContext struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

func (rc RemixContext) String() string {
	return fmt.Sprintf("%s:%d", rc.Address, rc.Port)
}
