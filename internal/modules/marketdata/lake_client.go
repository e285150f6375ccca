package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LakeConfig scopes every lookup to one term/topic/folder in the lake
type LakeConfig struct {
	BaseURL   string
	Term      string
	Topic     string
	SubFolder string
}

// LakeClient is an HTTP client for the object-storage lookup endpoint
// (POST /s3_get), which proxies the backing S3 bucket.
type LakeClient struct {
	cfg        LakeConfig
	httpClient *http.Client
	log        zerolog.Logger
}

// NewLakeClient creates a new data-lake lookup client.
func NewLakeClient(cfg LakeConfig, log zerolog.Logger) *LakeClient {
	return &LakeClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "lake").Logger(),
	}
}

type lookupRequest struct {
	Term      string `json:"term"`
	Topic     string `json:"topic"`
	SubFolder string `json:"sub_folder"`
	Key       string `json:"key"`
}

// Lookup fetches the historical bars for symbol, authorized by the session
// token, and filters the decoded result set down to that symbol. Read-only
// and never retried; re-submitting the search is always safe.
func (c *LakeClient) Lookup(ctx context.Context, token, symbol string) ([]TickerRecord, error) {
	reqBody, err := json.Marshal(lookupRequest{
		Term:      c.cfg.Term,
		Topic:     c.cfg.Topic,
		SubFolder: c.cfg.SubFolder,
		Key:       symbol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup request: %w", err)
	}

	url := fmt.Sprintf("%s/s3_get", c.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("Lookup request failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decode
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrUnknownSymbol
	default:
		c.log.Error().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("Unexpected lookup response")
		return nil, ErrUnavailable
	}

	var entries []lakeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to decode lookup response")
		return nil, ErrUnavailable
	}

	records := filterBySymbol(entries, symbol)
	c.log.Debug().Str("symbol", symbol).Int("records", len(records)).Msg("Lookup complete")
	return records, nil
}
