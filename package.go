// Remix2go is a Go implementation of the RTX Remix node pack for ComfyUI style graph hosts.
// Every node is a thin adapter over the RTX Remix REST API: it threads a connection context
// through the graph so that side-effecting calls are ordered by data dependencies, and it can be
// switched off with an enable gate without breaking the graph.
package remix2go
