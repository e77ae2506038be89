package client

// Package client contains the outbound HTTP clients for the two external
// read-only collaborators: the storage-analytics service and the HR directory
// service. Both are accessed through simple GET request/response contracts.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUserNotFound signals that the directory service has no entry for the
// requested user. Callers branch on it; every other error is a transport or
// protocol failure.
var ErrUserNotFound = errors.New("user not found in directory")

const defaultTimeout = 30 * time.Second

// newHTTPClient builds the shared client with tracing on every outbound call.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// getJSON performs an authenticated GET and decodes a 200 response into out.
// A 404 is reported as errNotFound so callers can distinguish missing
// resources from transport failures.
func getJSON(ctx context.Context, hc *http.Client, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", url, err)
		}
		return nil
	case http.StatusNotFound:
		return errNotFound
	case http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad request to %s: %s", url, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}
}

var errNotFound = errors.New("resource not found")
