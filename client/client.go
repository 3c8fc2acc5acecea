// Package client talks to the listings API on behalf of the admin front-end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"estatedesk/session"
)

// DevOrigin is the API origin used in development mode.
const DevOrigin = "http://localhost:5000"

const fallbackMessage = "Request failed"

type Config struct {
	// Dev prefixes every path with DevOrigin.
	Dev bool
	// BaseURL prefixes every path outside dev mode. Empty keeps paths relative.
	BaseURL    string
	HTTPClient *http.Client
}

// ConfigFromEnv reads ESTATEDESK_DEV and ESTATEDESK_URL.
func ConfigFromEnv() Config {
	dev := os.Getenv("ESTATEDESK_DEV")
	return Config{
		Dev:     dev == "1" || strings.EqualFold(dev, "true"),
		BaseURL: os.Getenv("ESTATEDESK_URL"),
	}
}

// Resolve returns the request target for path.
func (c Config) Resolve(path string) string {
	if c.Dev {
		return DevOrigin + path
	}
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Request is one call against the API. Body is sent as is with ContentType.
type Request struct {
	Method      string
	Path        string
	Body        io.Reader
	ContentType string
	// Fallback replaces the generic message when an error body carries none.
	Fallback string
}

// Send performs req with the session's bearer token and decodes a 2xx body into out
// (skipped when out is nil). Failures come back as *RequestError, *NetworkError
// or *DecodeError.
func Send(ctx context.Context, cfg Config, sess session.Session, req Request, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, cfg.Resolve(req.Path), req.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if sess.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	res, err := cfg.httpClient().Do(httpReq)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		fallback := req.Fallback
		if fallback == "" {
			fallback = fallbackMessage
		}
		return &RequestError{Status: res.StatusCode, Message: DecodeErrorMessage(body, fallback)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// Params describe the call an Endpoint makes.
type Params struct {
	URL    string
	Method string
	// Body is JSON encoded unless Method is GET or Body is nil.
	Body     interface{}
	Fallback string
}

// Endpoint is a reusable JSON call that remembers its last outcome.
// It is safe to read its state from other goroutines while Execute runs.
type Endpoint[T any] struct {
	cfg    Config
	sess   session.Session
	params Params

	mu      sync.Mutex
	data    T
	hasData bool
	err     string
	loading bool
}

func NewEndpoint[T any](cfg Config, sess session.Session, p Params) *Endpoint[T] {
	if p.Method == "" {
		p.Method = http.MethodGet
	}
	return &Endpoint[T]{cfg: cfg, sess: sess, params: p}
}

// Data returns the body of the last successful call.
func (e *Endpoint[T]) Data() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, e.hasData
}

// Err is the message of the last failure, "" after a success.
func (e *Endpoint[T]) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Endpoint[T]) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Execute runs the call. The outcome is kept on the Endpoint and also returned.
func (e *Endpoint[T]) Execute(ctx context.Context) (err error) {
	e.mu.Lock()
	e.loading = true
	e.err = ""
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.loading = false
		if err != nil {
			e.err = err.Error()
			log.Errorf("API Error: %s", e.err)
		}
	}()

	req := Request{Method: e.params.Method, Path: e.params.URL, Fallback: e.params.Fallback}
	if e.params.Method != http.MethodGet && e.params.Body != nil {
		payload, mErr := json.Marshal(e.params.Body)
		if mErr != nil {
			return fmt.Errorf("encode request: %w", mErr)
		}
		req.Body = bytes.NewReader(payload)
		req.ContentType = "application/json"
	}

	var out T
	if err := Send(ctx, e.cfg, e.sess, req, &out); err != nil {
		return err
	}

	e.mu.Lock()
	e.data = out
	e.hasData = true
	e.mu.Unlock()
	return nil
}
