package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

// maxBody caps a sheet download. A full board is a few hundred kilobytes.
const maxBody = 8 << 20

// ErrTooLarge is returned when the sheet is bigger than the client accepts.
var ErrTooLarge = errors.New("sheet too large")

// PublishedCSVURL builds the CSV export URL for a sheet published to the web.
// publishID is the part after /d/e/ in the published link.
func PublishedCSVURL(publishID, gid string) string {
	if gid == "" {
		gid = "0"
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/e/%s/pub?gid=%s&single=true&output=csv",
		url.PathEscape(publishID), url.QueryEscape(gid))
}

// Client downloads and parses the published sheet.
type Client struct {
	URL     string
	HTTP    *http.Client
	MaxBody int64 // Bytes; zero means 8 MiB
}

// NewClient creates a sheet client for a CSV URL.
func NewClient(csvURL string) *Client {
	return &Client{
		URL:     csvURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		MaxBody: maxBody,
	}
}

// Fetch downloads the sheet and returns its rows in sheet order.
func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	limit := c.MaxBody
	if limit <= 0 {
		limit = maxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet fetch returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	// A cut-off sheet would drop trailing rows and mangle the last one.
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: over %s", ErrTooLarge, humanize.IBytes(uint64(limit)))
	}

	records, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}

	slog.Debug("sheet fetched",
		"size", humanize.Bytes(uint64(len(body))),
		"rows", len(records),
		"elapsed", time.Since(start),
	)
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
