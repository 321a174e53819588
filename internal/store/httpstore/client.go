// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpstore implements the entity store contract against the REST
// persistence service.
package httpstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/model"
)

// Client configuration defaults.
const (
	DefaultTimeout = 15 * time.Second
	MaxResponseLen = 4 << 20
	UserAgent      = "ocms-editor/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the persistence service. It never retries: a repeated
// create could duplicate an item.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	c := &Client{base: base, http: hc, logger: opts.Logger}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// ListCollections fetches every collection.
func (c *Client) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var out []model.Collection
	err := c.do(ctx, "list collections", "collection", http.MethodGet, "/collections", nil, nil, &out)
	return out, err
}

// GetCollection fetches one collection by id or slug.
func (c *Client) GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error) {
	var out model.Collection
	if err := c.do(ctx, "get collection", "collection", http.MethodGet, "/collections/"+url.PathEscape(idOrSlug), nil, nil, &out); err != nil {
		return nil, notFoundID(err, idOrSlug)
	}
	return &out, nil
}

// Get fetches one item.
func (c *Client) Get(ctx context.Context, itemID string) (*model.ContentItem, error) {
	var out model.ContentItem
	if err := c.do(ctx, "get item", "item", http.MethodGet, "/content-items/"+url.PathEscape(itemID), nil, nil, &out); err != nil {
		return nil, notFoundID(err, itemID)
	}
	return &out, nil
}

// List fetches the items of a collection in server order.
func (c *Client) List(ctx context.Context, collectionID string) ([]model.ContentItem, error) {
	var out []model.ContentItem
	q := url.Values{"collectionId": {collectionID}}
	if err := c.do(ctx, "list items", "collection", http.MethodGet, "/content-items", q, nil, &out); err != nil {
		return nil, notFoundID(err, collectionID)
	}
	return out, nil
}

// Create posts a new item. The server assigns id and timestamps.
func (c *Client) Create(ctx context.Context, collectionID string, p model.Payload) (*model.ContentItem, error) {
	p.CollectionID = collectionID
	var out model.ContentItem
	if err := c.do(ctx, "create item", "collection", http.MethodPost, "/content-items", nil, p, &out); err != nil {
		return nil, notFoundID(err, collectionID)
	}
	return &out, nil
}

// Update patches an item with the members present in p.
func (c *Client) Update(ctx context.Context, itemID string, p model.Payload) (*model.ContentItem, error) {
	p.CollectionID = ""
	var out model.ContentItem
	if err := c.do(ctx, "update item", "item", http.MethodPatch, "/content-items/"+url.PathEscape(itemID), nil, p, &out); err != nil {
		return nil, notFoundID(err, itemID)
	}
	return &out, nil
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, itemID string) error {
	err := c.do(ctx, "delete item", "item", http.MethodDelete, "/content-items/"+url.PathEscape(itemID), nil, nil, nil)
	return notFoundID(err, itemID)
}

// errorBody is the service's error envelope.
type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, op, resource, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &apperr.NetworkError{Op: op, Err: err}
		}
	}

	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("store request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return responseError(op, resource, resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		var se *apperr.SchemaError
		if errors.As(err, &se) {
			return se
		}
		return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// responseError maps an HTTP error status onto the error taxonomy.
func responseError(op, resource string, status int, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusNotFound:
		return &apperr.NotFoundError{Resource: resource}
	case status >= 500:
		return &apperr.NetworkError{Op: op, StatusCode: status, Err: errors.New(msg)}
	case eb.Error.Code == "schema_error":
		return &apperr.SchemaError{Message: msg}
	default:
		ve := &apperr.ValidationError{Fields: eb.Error.Details}
		if ve.Empty() {
			ve.Add("", msg)
		}
		return ve
	}
}

// notFoundID fills in the id of a NotFoundError built from a bare 404.
func notFoundID(err error, id string) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) && nf.ID == "" {
		nf.ID = id
	}
	return err
}
