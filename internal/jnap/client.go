// Package jnap speaks the JSON RPC dialect used by the Uponor X265
// controller: every call is a POST to /JNAP/ with the action named in the
// X-JNAP-Action header.
package jnap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	actionHeader        = "X-JNAP-Action"
	actionGetAttributes = "GetAttributes"
	actionSetAttributes = "SetAttributes"

	defaultTimeout = 10 * time.Second
)

// ErrClosed is returned for any call made after Close.
var ErrClosed = errors.New("jnap: client is closed")

// Client issues JNAP requests against a single controller. It owns one
// lazily-created HTTP connection pool which is released on Close; a closed
// client fails fast instead of reconnecting.
type Client struct {
	baseURL string
	timeout time.Duration

	mu         sync.Mutex
	httpClient *http.Client
	closed     bool
}

// NewClient builds a client for the controller at host (IP or hostname).
// A non-positive timeout falls back to the 10s default; the timeout bounds
// every request so a wedged controller cannot stall a poll cycle forever.
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: fmt.Sprintf("http://%s/JNAP/", strings.TrimSuffix(host, "/")),
		timeout: timeout,
	}
}

// client returns the lazily-created HTTP client, or ErrClosed after Close.
func (c *Client) client() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c.httpClient, nil
}

// Close releases the connection pool. Further calls return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

// GetAttributes fetches raw variables. An empty names slice requests the
// full set. The controller answers either with a flat name->value object or
// with the nested {result, output:{vars:[...]}} envelope; both are flattened
// into a plain name->value map with every value rendered as a string.
func (c *Client) GetAttributes(ctx context.Context, names []string) (map[string]string, error) {
	payload := map[string]any{}
	if len(names) > 0 {
		payload["waspVarNames"] = names
	}
	body, err := c.post(ctx, actionGetAttributes, payload)
	if err != nil {
		return nil, err
	}
	vars, err := flattenResponse(body)
	if err != nil {
		return nil, fmt.Errorf("get attributes: %w", err)
	}
	return vars, nil
}

// DiscoverVariables returns every raw variable name the controller exposes,
// by requesting the full attribute set and keeping only the key names.
func (c *Client) DiscoverVariables(ctx context.Context) ([]string, error) {
	vars, err := c.GetAttributes(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	return names, nil
}

// SetAttribute writes a single variable. The value is always sent as a
// string, matching what the controller expects on the wire. A nil error
// means the controller acknowledged with HTTP 200.
func (c *Client) SetAttribute(ctx context.Context, name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("jnap: variable name is empty")
	}
	_, err := c.post(ctx, actionSetAttributes, map[string]any{
		"waspVarName":  name,
		"waspVarValue": value,
	})
	return err
}

// post sends one JNAP request and returns the decoded response body.
// Transport errors, non-200 statuses, and undecodable bodies all surface as
// a single wrapped error; nothing lower-level escapes this boundary.
func (c *Client) post(ctx context.Context, action string, payload any) (map[string]any, error) {
	httpClient, err := c.client()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jnap: encode %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("jnap: build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actionHeader, action)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jnap: %s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jnap: %s: unexpected status %d", action, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("jnap: %s: decode response: %w", action, err)
	}
	return body, nil
}

// flattenResponse reduces either response form to a flat name->value map.
func flattenResponse(body map[string]any) (map[string]string, error) {
	if output, ok := body["output"].(map[string]any); ok {
		vars, ok := output["vars"].([]any)
		if !ok {
			return nil, errors.New("response output has no vars list")
		}
		flat := make(map[string]string, len(vars))
		for _, entry := range vars {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := obj["waspVarName"].(string)
			if name == "" {
				continue
			}
			if value, ok := scalarString(obj["waspVarValue"]); ok {
				flat[name] = value
			}
		}
		return flat, nil
	}

	// Flat form: every top-level scalar is a variable.
	flat := make(map[string]string, len(body))
	for name, value := range body {
		if name == "result" {
			continue
		}
		if s, ok := scalarString(value); ok {
			flat[name] = s
		}
	}
	return flat, nil
}

// scalarString renders a decoded JSON scalar as its wire string. Nested
// objects and arrays are not variable values and are dropped.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "1", true
		}
		return "0", true
	default:
		return "", false
	}
}
