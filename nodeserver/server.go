// Package nodeserver exposes a node registry over HTTP so that an out of process graph host can
// discover the nodes and run them. Every execution is broadcast on a websocket.
package nodeserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

/*
@routes.get("/object_info")
@routes.get("/object_info/{node}")
@routes.get("/ws")

@routes.post("/execute")
*/

// ExecuteRequest runs one node with the given inputs
type ExecuteRequest struct {
	Node   string                 `json:"node"`
	Inputs map[string]interface{} `json:"inputs"`
}

// ExecuteResponse holds the outputs of a successful execution
type ExecuteResponse struct {
	ExecutionID string            `json:"execution_id"`
	Node        string            `json:"node"`
	Outputs     []json.RawMessage `json:"outputs"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// Server serves a node registry
type Server struct {
	registry *nodeapi.Registry
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// New returns a server for the nodes of r
func New(r *nodeapi.Registry) *Server {
	s := &Server{
		registry: r,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		clients: make(map[*wsClient]struct{}),
	}
	s.mux.HandleFunc("GET /object_info", s.handleObjectInfo)
	s.mux.HandleFunc("GET /object_info/{node}", s.handleObjectInfoByID)
	s.mux.HandleFunc("POST /execute", s.handleExecute)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	errc := make(chan error, 1)
	go func() {
		slog.Info("node server listening", "addr", addr, "nodes", s.registry.Count())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("can't write response", "error", err)
	}
}

func (s *Server) handleObjectInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.ObjectInfo())
}

func (s *Server) handleObjectInfoByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("node")
	d, ok := s.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "unknown node " + id, Type: "UnknownNode"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*nodeapi.NodeObject{id: d.Object()})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "invalid request body: " + err.Error(), Type: "InvalidArgument"})
		return
	}
	if req.Inputs == nil {
		req.Inputs = map[string]interface{}{}
	}

	executionID := uuid.New().String()
	s.broadcast(WSMessage{Type: MessageExecuting, Data: WSMessageDataExecuting{Node: req.Node, ExecutionID: executionID}})

	start := time.Now()
	res, err := s.registry.Execute(r.Context(), req.Node, nodeapi.Args(req.Inputs))
	if err == nil {
		var outputs []json.RawMessage
		outputs, err = encodeOutputs(res)
		if err == nil {
			slog.Info("node executed", "node", req.Node, "execution_id", executionID, "duration", time.Since(start))
			s.broadcast(WSMessage{Type: MessageExecuted, Data: WSMessageDataExecuted{Node: req.Node, ExecutionID: executionID, Output: outputs}})
			writeJSON(w, http.StatusOK, ExecuteResponse{ExecutionID: executionID, Node: req.Node, Outputs: outputs})
			return
		}
	}

	status, typ := classify(err)
	slog.Error("node failed", "node", req.Node, "execution_id", executionID, "type", typ, "error", err)
	s.broadcast(WSMessage{Type: MessageExecutionError, Data: WSMessageExecutionError{
		Node:             req.Node,
		ExecutionID:      executionID,
		ExceptionMessage: err.Error(),
		ExceptionType:    typ,
	}})
	writeJSON(w, status, ErrorResponse{Detail: err.Error(), Type: typ})
}

// encodeOutputs encodes every output on its own so that images use their PNG form
func encodeOutputs(res nodeapi.Result) ([]json.RawMessage, error) {
	outputs := make([]json.RawMessage, len(res))
	for i, v := range res {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		outputs[i] = b
	}
	return outputs, nil
}

// classify maps an execution error to its HTTP status and error type
func classify(err error) (int, string) {
	var rerr *remixapi.RemoteRequestError
	switch {
	case errors.Is(err, nodeapi.ErrUnknownNode):
		return http.StatusBadRequest, "UnknownNode"
	case errors.Is(err, nodeapi.ErrMissingArgument):
		return http.StatusBadRequest, "MissingArgument"
	case errors.Is(err, nodeapi.ErrInvalidArgument):
		return http.StatusBadRequest, "InvalidArgument"
	case errors.As(err, &rerr):
		return http.StatusBadGateway, "RemoteRequestError"
	case errors.Is(err, remixapi.ErrEmptyResult):
		return http.StatusInternalServerError, "EmptyResultError"
	case errors.Is(err, remixapi.ErrInvalidType):
		return http.StatusInternalServerError, "InvalidTypeError"
	case errors.Is(err, remixapi.ErrFileNotFound):
		return http.StatusInternalServerError, "FilesystemError"
	}
	return http.StatusInternalServerError, "Error"
}

// wsClient is a connected event stream. Only its writer goroutine writes data frames to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 64), done: make(chan struct{})}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	slog.Debug("websocket client connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)
	// the stream is one way, reading only detects the client going away
	go func() {
		defer s.removeClient(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writeLoop(c *wsClient) {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("dropping websocket client", "error", err)
				s.removeClient(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) removeClient(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (s *Server) snapshotClients() []*wsClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

func (s *Server) closeClients() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	for _, c := range s.snapshotClients() {
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.removeClient(c)
	}
}

// broadcast queues msg on every connected client without waiting for the writes. A client
// whose queue is full is dropped.
func (s *Server) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("can't encode message", "type", msg.Type, "error", err)
		return
	}

	for _, c := range s.snapshotClients() {
		select {
		case c.send <- data:
		case <-c.done:
		default:
			slog.Warn("dropping slow websocket client", "type", msg.Type)
			s.removeClient(c)
		}
	}
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
