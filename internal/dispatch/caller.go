package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netcompiler/internal/metrics"
)

// Session is the authenticated transport a Caller sends requests through
type Session interface {
	BaseURL() string
	Refresh(ctx context.Context) error
	Do(req *http.Request) (*http.Response, error)
}

// Executor performs one catalog operation
type Executor interface {
	Execute(ctx context.Context, op Operation, path map[string]any, body Args) (*Response, error)
}

// Args are the named arguments of a call
type Args map[string]any

// Caller turns operations into HTTP requests against the session's base URL
type Caller struct {
	session Session
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewCaller creates a Caller
func NewCaller(session Session, log zerolog.Logger, m *metrics.Metrics) *Caller {
	return &Caller{session: session, log: log, metrics: m}
}

// Execute expands op's path, sends the whitelisted body fields as a form and
// decodes the response. Any failure after the request is built wraps
// ErrNoResult.
func (c *Caller) Execute(ctx context.Context, op Operation, path map[string]any, body Args) (*Response, error) {
	p, err := Expand(op.Path, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	target := c.session.BaseURL() + p

	if err := c.session.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoResult, op.Name, err)
	}

	var reader io.Reader
	form := EncodeForm(op.Params, body)
	if op.Method != http.MethodGet && len(form) > 0 {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op.Name, err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With().
		Str("operation", op.Name).
		Str("method", op.Method).
		Str("url", target).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	resp, err := c.session.Do(req)
	if err != nil {
		c.metrics.ObserveAPICall(op.Name, false, time.Since(start))
		log.Error().Err(err).Msg("api call failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNoResult, op.Method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveAPICall(op.Name, false, elapsed)
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrNoResult, op.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveAPICall(op.Name, false, elapsed)
		log.Error().Int("status", resp.StatusCode).Str("body", string(data)).Msg("api call rejected")
		return nil, &StatusError{
			Operation:  op.Name,
			Method:     op.Method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	out, err := decode(resp, data)
	if err != nil {
		c.metrics.ObserveAPICall(op.Name, false, elapsed)
		log.Error().Err(err).Msg("decode response")
		return nil, fmt.Errorf("%w: %s: %w", ErrNoResult, op.Name, err)
	}

	c.metrics.ObserveAPICall(op.Name, true, elapsed)
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("api call")
	return out, nil
}

// EncodeForm keeps the fields of args named in whitelist. Nil values are
// dropped.
func EncodeForm(whitelist []string, args Args) url.Values {
	form := url.Values{}
	for _, name := range whitelist {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		form.Set(name, FormatValue(v))
	}
	return form
}

func decode(resp *http.Response, data []byte) (*Response, error) {
	out := &Response{StatusCode: resp.StatusCode, Text: string(data)}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" || len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out.Body); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}
