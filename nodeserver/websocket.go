package nodeserver

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketCallback handles the messages read from a WebSocketConnection
type WebSocketCallback interface {
	OnMessage(message []byte)
}

// WebSocketConnection is a client connection to the execution stream that retries with an
// exponential backoff until it is connected
type WebSocketConnection struct {
	WebSocketURL   string
	Conn           *websocket.Conn
	ConnectionDone chan bool
	MaxRetry       int
	RetryCount     int
	Callback       WebSocketCallback

	// BaseDelay is the first retry delay, doubled on each attempt up to MaxDelay
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Dialer    websocket.Dialer

	mu          sync.Mutex
	isConnected bool
}

// IsConnected reports whether the connection is established and reading
func (w *WebSocketConnection) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isConnected
}

func (w *WebSocketConnection) setConnected(v bool) {
	w.mu.Lock()
	w.isConnected = v
	w.mu.Unlock()
}

// ConnectWithManager connects in the background and starts reading messages.
// timeout is the maximum time to wait for the connection, 0 to return at once and a negative
// value to wait until the manager gives up.
func (w *WebSocketConnection) ConnectWithManager(timeout time.Duration) error {
	if w.ConnectionDone == nil {
		w.ConnectionDone = make(chan bool, 1)
	}
	// closed on success, failed receives a value when the retries are exhausted
	connected := make(chan struct{})
	failed := make(chan error, 1)
	// serializes the attempts so that connect is never called concurrently
	attemptConnect := make(chan bool, 1)
	attemptConnect <- true

	go func() {
		retries := 0
		for {
			select {
			case <-attemptConnect:
				err := w.connect()
				if err != nil {
					w.setConnected(false)
					retries++
					if retries > w.MaxRetry {
						slog.Error("maximum number of retries reached", "retries", w.MaxRetry, "url", w.WebSocketURL)
						failed <- fmt.Errorf("connecting to %s: %w", w.WebSocketURL, err)
						return
					}
					time.AfterFunc(w.getReconnectDelay(), func() {
						attemptConnect <- true
					})
				} else {
					w.setConnected(true)
					close(connected)
					w.handleMessages()
					return
				}
			case <-w.ConnectionDone:
				return
			}
		}
	}()

	switch {
	case timeout > 0:
		select {
		case <-connected:
			return nil
		case err := <-failed:
			return err
		case <-time.After(timeout):
			return fmt.Errorf("connection timeout after %v", timeout)
		}
	case timeout < 0:
		select {
		case <-connected:
			return nil
		case err := <-failed:
			return err
		}
	}
	return nil
}

func (w *WebSocketConnection) connect() error {
	conn, _, err := w.Dialer.Dial(w.WebSocketURL, nil)
	if err != nil {
		slog.Warn("websocket dial failed", "url", w.WebSocketURL, "error", err)
		return err
	}

	w.mu.Lock()
	w.Conn = conn
	w.mu.Unlock()
	return nil
}

// Close closes the underlying connection, which stops the reader
func (w *WebSocketConnection) Close() error {
	w.mu.Lock()
	conn := w.Conn
	w.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (w *WebSocketConnection) handleMessages() {
	defer func() {
		w.setConnected(false)
		w.Conn.Close()
		select {
		case w.ConnectionDone <- true:
		default:
		}
	}()
	for {
		_, message, err := w.Conn.ReadMessage()
		if err != nil {
			slog.Debug("websocket read stopped", "error", err)
			return
		}
		if w.Callback != nil {
			w.Callback.OnMessage(message)
		}
	}
}

// getReconnectDelay is BaseDelay * 2^RetryCount, capped at MaxDelay
func (w *WebSocketConnection) getReconnectDelay() time.Duration {
	delay := w.BaseDelay * time.Duration(math.Pow(2, float64(w.RetryCount)))
	if w.MaxDelay > 0 && delay > w.MaxDelay {
		delay = w.MaxDelay
	}
	w.RetryCount++
	return delay
}
