package torrent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const fetchTimeout = 20 * time.Second

// ErrTooLarge is returned when a server sends more metadata bytes than
// the configured cap; the download is aborted mid-stream.
var ErrTooLarge = errors.New("torrent: metadata exceeds size cap")

// Fetcher downloads raw .torrent metadata with a hard size cap, so a
// misbehaving server cannot balloon memory use.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

func NewFetcher(httpClient *http.Client, userAgent string, maxBytes int64) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch torrent metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	// Read one byte past the cap to detect oversized payloads without
	// buffering them.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read torrent metadata: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrTooLarge, f.maxBytes, url)
	}

	return data, nil
}
