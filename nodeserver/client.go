package nodeserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ExecutionError is returned by Client.Execute when the server reports a failure
type ExecutionError struct {
	StatusCode int
	ErrorResponse
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.StatusCode, e.Detail)
}

// Client talks to a node server
type Client struct {
	serverBaseAddress string
	httpclient        *http.Client
	nodeobjects       *RemoteObjects
}

// NewClient returns a client for the node server at address ("host:port")
func NewClient(address string) *Client {
	address = strings.TrimPrefix(strings.TrimPrefix(address, "http://"), "ws://")
	return &Client{
		serverBaseAddress: strings.TrimSuffix(address, "/"),
		httpclient:        &http.Client{},
	}
}

// set the underlying http client
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpclient = client
}

// GetObjectInfos returns the node objects of the server. They are fetched once and cached.
func (c *Client) GetObjectInfos(ctx context.Context) (*RemoteObjects, error) {
	if c.nodeobjects != nil {
		return c.nodeobjects, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/object_info", c.serverBaseAddress), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeExecutionError(resp)
	}

	objects := &RemoteObjects{}
	if err := json.NewDecoder(resp.Body).Decode(&objects.Objects); err != nil {
		return nil, err
	}
	c.nodeobjects = objects
	return objects, nil
}

// Execute runs node on the server and returns its raw outputs
func (c *Client) Execute(ctx context.Context, node string, inputs map[string]interface{}) (*ExecuteResponse, error) {
	data, err := json.Marshal(ExecuteRequest{Node: node, Inputs: inputs})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://%s/execute", c.serverBaseAddress), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeExecutionError(resp)
	}

	retv := &ExecuteResponse{}
	if err := json.NewDecoder(resp.Body).Decode(retv); err != nil {
		return nil, err
	}
	return retv, nil
}

func decodeExecutionError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	e := &ExecutionError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &e.ErrorResponse); err != nil || e.Detail == "" {
		e.Detail = strings.TrimSpace(string(body))
		e.Type = http.StatusText(resp.StatusCode)
	}
	return e
}

type channelCallback chan *WSMessage

func (cb channelCallback) OnMessage(message []byte) {
	msg := &WSMessage{}
	if err := json.Unmarshal(message, msg); err != nil {
		slog.Warn("can't decode execution event", "error", err)
		return
	}
	cb <- msg
}

// Events connects to the execution stream and returns the decoded events.
// A reader that falls more than 64 events behind blocks the connection.
func (c *Client) Events(timeout time.Duration) (<-chan *WSMessage, *WebSocketConnection, error) {
	events := make(chan *WSMessage, 64)
	ws := &WebSocketConnection{
		WebSocketURL: fmt.Sprintf("ws://%s/ws", c.serverBaseAddress),
		MaxRetry:     5,
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Callback:     channelCallback(events),
	}
	if err := ws.ConnectWithManager(timeout); err != nil {
		return nil, nil, err
	}
	return events, ws, nil
}
