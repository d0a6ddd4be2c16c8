package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eventboard/src-server/event"
)

// HTTPFetcher posts filter requests to the events filter endpoint, the same
// way the embedded page script does.
type HTTPFetcher struct {
	Client   *http.Client
	Endpoint string
	// anti-forgery token handed out with the page
	Token string
	// Limit caps upcoming results, like the data-limit of a capped region.
	Limit int
}

func (f *HTTPFetcher) Fetch(ctx context.Context, window event.Window, audience string) (string, error) {
	form := url.Values{}
	form.Set("audience", audience)
	form.Set("nonce", f.Token)
	if window.IsPast() {
		form.Set("is_past", "1")
	} else {
		form.Set("is_past", "0")
		if f.Limit > 0 {
			form.Set("limit", strconv.Itoa(f.Limit))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("(*HTTPFetcher).Fetch: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("(*HTTPFetcher).Fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("(*HTTPFetcher).Fetch: can't read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("(*HTTPFetcher).Fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}
