package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"homeaudit/internal/config"
	"homeaudit/internal/model"
)

// DirectoryClient resolves a user's employment status and contact email from
// the HR directory service.
type DirectoryClient struct {
	baseURL string
	hc      *http.Client
}

// NewDirectoryClient creates a directory client from config.
func NewDirectoryClient(cfg config.DirectoryAPIConfig) (*DirectoryClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directory API base URL is required")
	}
	return &DirectoryClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      newHTTPClient(),
	}, nil
}

// Lookup fetches the directory entry for a user. A missing user is reported
// as ErrUserNotFound; any other error is a transport or protocol failure.
func (c *DirectoryClient) Lookup(ctx context.Context, userID string) (*model.DirectoryEntry, error) {
	var entry model.DirectoryEntry
	u := fmt.Sprintf("%s/workday/%s", c.baseURL, url.PathEscape(userID))
	if err := getJSON(ctx, c.hc, u, "", &entry); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("directory lookup for %s: %w", userID, err)
	}
	return &entry, nil
}
