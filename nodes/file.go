package nodes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

func fileNodes(env *Env) []*nodeapi.Descriptor {
	return []*nodeapi.Descriptor{
		nodeapi.Threaded(nodeapi.Node{
			ID:          "RTXRemixDeleteFile",
			DisplayName: displayName("RTXRemixDeleteFile"),
			Description: "Delete a file from the disk",
			Category:    category("file"),
			Gated:       true,
			Inputs: nodeapi.Inputs{
				Required: []nodeapi.InputSpec{{Name: "path", Type: nodeapi.TypeString, Default: ""}},
			},
			Outputs: []nodeapi.OutputSpec{{Name: "File deleted", Type: nodeapi.TypeBoolean}},
			Empty:   nodeapi.Result{false},
			Run: func(ctx context.Context, rc nodeapi.RemixContext, args nodeapi.Args) (nodeapi.Result, error) {
				deleted, err := DeleteFile(args.String("path"))
				if err != nil {
					return nil, err
				}
				return nodeapi.Result{deleted}, nil
			},
		}),
	}
}

// DeleteFile removes p. A missing file fails with ErrFileNotFound, any other failure is
// logged and reported as false.
func DeleteFile(p string) (bool, error) {
	err := os.Remove(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: %s", remixapi.ErrFileNotFound, p)
	}
	slog.Warn("can't delete file", "path", p, "error", err)
	return false, nil
}
