package remixapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// HeaderContentType is the header the Remix service reads the API version from
	HeaderContentType = "Content-Type"
	// RemixVersion1_0 is the only API version these nodes speak
	RemixVersion1_0 = "application/lightspeed.remix.service+json; version=1.0"
)

// RemixClient issues requests against a single RTX Remix REST service.
// It performs exactly one round trip per call: no retries, no timeouts beyond what the
// underlying http.Client is configured with.
type RemixClient struct {
	serverBaseAddress string
	httpclient        *http.Client
}

// NewRemixClient creates a client for the service listening on server_address:server_port
func NewRemixClient(server_address string, server_port int) *RemixClient {
	return &RemixClient{
		serverBaseAddress: server_address + ":" + strconv.Itoa(server_port),
		httpclient:        http.DefaultClient,
	}
}

// BaseURL returns http://address:port
func (c *RemixClient) BaseURL() string {
	return "http://" + c.serverBaseAddress
}

// set the underlying http client
func (c *RemixClient) SetHttpClient(client *http.Client) {
	if client == nil {
		client = http.DefaultClient
	}
	c.httpclient = client
}

// newRequest builds a request for endpoint, which must already be escaped.
// body, when non-nil, is serialized as JSON.
func (c *RemixClient) newRequest(ctx context.Context, method string, endpoint string, query url.Values, body interface{}) (*http.Request, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", c.BaseURL(), endpoint))
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderContentType, RemixVersion1_0)
	return req, nil
}

// do sends a request, validates the response and decodes the JSON body into out when out is non-nil
func (c *RemixClient) do(ctx context.Context, method string, endpoint string, query url.Values, body interface{}, out interface{}) error {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}

	slog.Debug("remix request", "method", method, "url", req.URL.String())
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp); err != nil {
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, req.URL.Path, err)
	}
	return nil
}
