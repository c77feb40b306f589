package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"peermap/internal/model"
)

// Client fetches topology snapshots from an HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://host:port).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Topology fetches the current snapshot.
func (c *Client) Topology(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := c.getJSON(ctx, "/api/topology", &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Ping checks that the snapshot endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/api/ping", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("request failed: %s: %s", res.Status, msg)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	if out == nil {
		return nil
	}

	decoder := json.NewDecoder(res.Body)
	return decoder.Decode(out)
}

// Poll fetches a snapshot immediately and then once per interval, handing
// each one to submit. Fetch failures are logged and the loop keeps going.
func Poll(ctx context.Context, client *Client, interval time.Duration, submit func(model.Snapshot)) error {
	fetch := func() {
		snap, err := client.Topology(ctx)
		if err != nil {
			log.Printf("snapshot fetch failed: %v", err)
			return
		}
		submit(snap)
	}

	fetch()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fetch()
		}
	}
}
