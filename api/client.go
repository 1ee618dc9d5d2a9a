// Package api provides the single shared HTTP client for the Firmaboard
// backend. Every request passes through one outbound decorator (bearer
// credential + tenant header) and one inbound decorator (access-token
// rotation on success, token clearing on a 401).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/firmaboard/firmaboard-go/tokens"
)

const bearerPrefix = "Bearer "

// Client is the shared backend client. It is safe for concurrent use; the
// tenant slot is the one sanctioned piece of mutable request-scoped state,
// written only by the tenant resolver on navigation.
type Client struct {
	baseURL string
	http    *http.Client
	store   *tokens.Store

	mu     sync.RWMutex
	tenant string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates the shared client. baseURL already includes the API prefix.
func New(baseURL string, store *tokens.Store, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		store:   store,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL including the API prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// SetTenant sets or clears (empty slug) the active tenant. Every subsequent
// request carries it as a dedicated header until it changes again.
func (c *Client) SetTenant(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenant = slug
}

// Tenant returns the active tenant slug, empty when none is active.
func (c *Client) Tenant() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("[Client.Get] new request: %w", err)
	}
	return c.do(req, out)
}

// Post performs a POST request with a JSON body and decodes the JSON
// response into out. Both body and out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[Client.Post] encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[Client.Post] new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do runs the request through the outbound and inbound decorators.
func (c *Client) do(req *http.Request, out interface{}) error {
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(resp)
	}

	c.rotateFromResponse(resp)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// decorate attaches the bearer credential, tenant header and a request ID.
// A missing token or tenant is a valid state: public, non-tenant-scoped
// requests carry neither.
func (c *Client) decorate(req *http.Request) {
	if token, ok := c.store.AccessToken(); ok {
		req.Header.Set(HeaderAuthorization, bearerPrefix+token)
	}
	if tenant := c.Tenant(); tenant != "" {
		req.Header.Set(HeaderTenantSlug, tenant)
	}
	requestID := uuid.New().String()
	req.Header.Set(HeaderRequestID, requestID)

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", requestID).
		Msg("api request")
}

// rotateFromResponse persists a rotated bearer credential carried in the
// response Authorization header, leaving the refresh token untouched.
func (c *Client) rotateFromResponse(resp *http.Response) {
	header := resp.Header.Get(HeaderAuthorization)
	if header == "" {
		return
	}
	rotated := strings.TrimPrefix(header, bearerPrefix)
	if rotated == "" || rotated == header {
		return
	}
	if err := c.store.RotateAccess(rotated); err != nil {
		log.Warn().Err(err).Msg("failed to persist rotated access token")
	}
}

// handleErrorResponse normalizes an HTTP failure. A 401 clears both token
// areas unconditionally before the error is re-raised; the caller decides
// everything else (the client never redirects or mutates UI state).
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear tokens after 401")
		}
	}

	return &Error{Status: resp.StatusCode, Message: errorMessage(body)}
}

// errorMessage extracts a human-readable message from an error payload.
// The backend uses both {"error": ...} and {"detail": ...} shapes.
func errorMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "request failed"
	}
	return msg
}

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
