package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// boardStatus mirrors GET /api/v1/status.
type boardStatus struct {
	Name          string         `json:"name"`
	Source        string         `json:"source"`
	Rows          int            `json:"rows"`
	Overflow      int            `json:"overflow"`
	Refreshed     string         `json:"refreshed"`
	LastError     string         `json:"last_error"`
	MaxRadius     int            `json:"max_radius"`
	TotalHexCount int            `json:"total_hex_count"`
	Terrain       map[string]int `json:"terrain"`
	GMUnlock      bool           `json:"gm_unlock"`
}

func printStatus(apiURL string, wait time.Duration) error {
	client := &http.Client{Timeout: 10 * time.Second}
	st, err := waitForStatus(client, apiURL, wait)
	if err != nil {
		return err
	}

	fmt.Printf("server:    %s\n", apiURL)
	fmt.Printf("source:    %s (refreshed %s)\n", st.Source, st.Refreshed)
	fmt.Printf("rows:      %d of %d hexes (radius %d)\n", st.Rows, st.TotalHexCount, st.MaxRadius)
	if st.Overflow > 0 {
		fmt.Printf("overflow:  %d rows past the board\n", st.Overflow)
	}
	if st.LastError != "" {
		fmt.Printf("error:     %s\n", st.LastError)
	}
	fmt.Printf("gm unlock: %t\n", st.GMUnlock)
	return nil
}

// waitForStatus polls the status endpoint with exponential backoff
// until it responds or wait elapses.
func waitForStatus(client *http.Client, apiURL string, wait time.Duration) (*boardStatus, error) {
	backoff := time.Second
	maxBackoff := 15 * time.Second
	deadline := time.Now().Add(wait)

	for {
		st, err := fetchStatus(client, apiURL)
		if err == nil {
			return st, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("server not ready after %s: %w", wait, err)
		}
		slog.Warn("hexmapd not ready, retrying...", "backoff", backoff, "error", err)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func fetchStatus(client *http.Client, apiURL string) (*boardStatus, error) {
	resp, err := client.Get(apiURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("GET status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status returned %d", resp.StatusCode)
	}

	var st boardStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}
