// Package rest talks to the mifi HTTP backend. The backend knows nothing
// about scratch data, so budgets saved through it keep only the contract
// fields.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

var _ ports.Backend = (*Client)(nil)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = log.OrDefault(l).WithComponent(log.ComponentREST) }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid REST base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		logger: log.Default().WithComponent(log.ComponentREST),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.RawTransaction, error) {
	var wire []wireTransaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]core.RawTransaction, len(wire))
	for i, w := range wire {
		out[i] = w.raw()
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]categories.Category, error) {
	var wire []wireCategory
	if err := c.do(ctx, http.MethodGet, "/budget/categories/all", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]categories.Category, len(wire))
	for i, w := range wire {
		out[i] = categories.Category{ID: string(w.ID), Name: string(w.Name), Description: string(w.Description)}
	}
	return out, nil
}

// GetBudget maps both a 404 and the backend's "No budget for month" error
// to ports.ErrNotFound.
func (c *Client) GetBudget(ctx context.Context, month core.MonthKey) (budget.Payload, error) {
	return c.getBudget(ctx, "/budget/monthly/"+month.String())
}

func (c *Client) GetDefaultTemplate(ctx context.Context) (budget.Payload, error) {
	return c.getBudget(ctx, "/budget/default")
}

func (c *Client) getBudget(ctx context.Context, path string) (budget.Payload, error) {
	var wire wireBudget
	err := c.do(ctx, http.MethodGet, path, nil, &wire)
	var se *StatusError
	switch {
	case errors.As(err, &se) && isNotFound(se):
		return budget.Payload{}, fmt.Errorf("%s: %w", path, ports.ErrNotFound)
	case err != nil:
		return budget.Payload{}, err
	case wire.empty():
		return budget.Payload{}, fmt.Errorf("%s: empty body: %w", path, ports.ErrNotFound)
	}
	return wire.payload(), nil
}

func isNotFound(se *StatusError) bool {
	return se.Code == http.StatusNotFound || strings.Contains(se.Body, "No budget")
}

// SaveBudget posts the contract fields. Scratch data is dropped and the
// loss is logged.
func (c *Client) SaveBudget(ctx context.Context, month core.MonthKey, p budget.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.warnScratch(ctx, month.String(), p)
	p.Scratch = nil
	return c.do(ctx, http.MethodPost, "/budget", p, nil)
}

func (c *Client) SetDefaultTemplate(ctx context.Context, p budget.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.warnScratch(ctx, "default", p)
	p = p.AsTemplate()
	p.Scratch = nil
	return c.do(ctx, http.MethodPut, "/budget/default", p, nil)
}

func (c *Client) warnScratch(ctx context.Context, month string, p budget.Payload) {
	if p.HasScratch() {
		c.logger.WarnContext(ctx, "REST backend does not store transfers flags, envelope sources or splits; they will be lost",
			log.FieldMonth, month)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "backend call",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatus, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
