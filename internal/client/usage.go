package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"homeaudit/internal/config"
	"homeaudit/internal/model"
)

// UsageClient queries the storage-analytics service for per-user aggregate
// disk consumption in a group's home-directory trees.
type UsageClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewUsageClient creates a usage client from config. BaseURL and Token are
// required.
func NewUsageClient(cfg config.UsageAPIConfig) (*UsageClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("usage API base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("usage API token is required")
	}
	return &UsageClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		hc:      newHTTPClient(),
	}, nil
}

// usageRecordWire is the analytics service's response shape for one user.
type usageRecordWire struct {
	UserID   string `json:"fn"`
	RecAggrs struct {
		Size    int64  `json:"size"`
		SizeHum string `json:"size_hum"`
	} `json:"rec_aggrs"`
}

// GroupUsage returns the aggregate-size records for every user in the group.
// Any failure is a failure of the whole run; there is no partial-results mode.
func (c *UsageClient) GroupUsage(ctx context.Context, group string) ([]model.UsageRecord, error) {
	var wire []usageRecordWire
	url := fmt.Sprintf("%s/query/%s", c.baseURL, group)
	if err := getJSON(ctx, c.hc, url, c.token, &wire); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("no usage data for group %q", group)
		}
		return nil, fmt.Errorf("fetch group usage: %w", err)
	}

	records := make([]model.UsageRecord, 0, len(wire))
	for _, w := range wire {
		records = append(records, model.UsageRecord{
			UserID:         w.UserID,
			BytesUsed:      w.RecAggrs.Size,
			BytesUsedHuman: w.RecAggrs.SizeHum,
		})
	}
	return records, nil
}

// TokenInfo describes the validity of the configured API token.
type TokenInfo struct {
	ValidUntil string `json:"valid_until_hum"`
}

// TokenInfo looks up the configured token's validity. Used for the debug-mode
// token report; tokens are of the form "name:id:secret" and the auth endpoint
// is keyed by the id segment.
func (c *UsageClient) TokenInfo(ctx context.Context) (*TokenInfo, error) {
	parts := strings.Split(c.token, ":")
	id := parts[0]
	if len(parts) > 1 {
		id = parts[1]
	}

	var info TokenInfo
	url := fmt.Sprintf("%s/auth/%s", c.baseURL, id)
	if err := getJSON(ctx, c.hc, url, c.token, &info); err != nil {
		return nil, fmt.Errorf("fetch token info: %w", err)
	}
	return &info, nil
}
