package binlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alovak/cardflow-bingen/internal/logger"
)

// DefaultBaseURL is the public lookup service.
const DefaultBaseURL = "https://binlist.io/lookup"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, hc *http.Client) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// Lookup returns the service's metadata for bin, or Fallback(bin) on any
// failure. It never returns an error; Success=false marks degraded data.
func (c *Client) Lookup(ctx context.Context, bin string) Metadata {
	md, err := c.Fetch(ctx, bin)
	if err != nil {
		logger.FromContext(ctx).Warn("bin lookup failed; using fallback",
			slog.String("bin", bin),
			slog.Any("err", err),
		)
		return Fallback(bin)
	}
	return md
}

// Fetch performs one GET <base>/<bin>/ and reports every failure as an error.
func (c *Client) Fetch(ctx context.Context, bin string) (Metadata, error) {
	target := fmt.Sprintf("%s/%s/", c.Base, url.PathEscape(bin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("lookup: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(body)
		return Metadata{}, fmt.Errorf("lookup status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return Metadata{}, fmt.Errorf("read lookup: %w", err)
	}
	var payload *response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Metadata{}, fmt.Errorf("decode lookup: %w", err)
	}
	if payload == nil || payload.empty() {
		return Metadata{}, fmt.Errorf("lookup returned no issuer data")
	}
	return payload.metadata(), nil
}
