package remixapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrEmptyResult is returned when a query produced no usable records
	ErrEmptyResult = errors.New("empty result")
	// ErrInvalidType is returned when a layer or texture type is not known to the service
	ErrInvalidType = errors.New("invalid type")
	// ErrFileNotFound is returned when an expected local path does not exist
	ErrFileNotFound = errors.New("file not found")
)

// RemoteRequestError is a non-2xx answer from the Remix service
type RemoteRequestError struct {
	StatusCode int
	Method     string
	URL        string
	Detail     string
}

func (e *RemoteRequestError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("remix request failed with status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("remix request %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
}

// CheckResponse returns a *RemoteRequestError when resp does not carry a 2xx status.
// The detail is taken from the "detail" field of a JSON body and falls back to the status text.
// Successful responses are left untouched.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	rerr := &RemoteRequestError{
		StatusCode: resp.StatusCode,
		Detail:     http.StatusText(resp.StatusCode),
	}
	if resp.Request != nil {
		rerr.Method = resp.Request.Method
		rerr.URL = resp.Request.URL.Redacted()
	}
	if rerr.Detail == "" {
		rerr.Detail = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	if resp.Body == nil {
		return rerr
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return rerr
	}
	if detail := detailFromBody(body); detail != "" {
		rerr.Detail = detail
	}
	return rerr
}

func detailFromBody(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	raw := bytes.TrimSpace(payload.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// structured details (validation errors) are kept as compact JSON
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
