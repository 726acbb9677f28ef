package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const fetchTimeout = 30 * time.Second

// Client fetches and normalizes a single torrent RSS/Atom feed.
type Client struct {
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	url          string
	userAgent    string
}

func NewClient(httpClient *http.Client, url string, userAgent string) *Client {
	return &Client{
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		url:          url,
		userAgent:    userAgent,
	}
}

// Newest returns the newest entry of the feed, or nil when the feed
// parses cleanly but carries no entries.
func (c *Client) Newest(ctx context.Context) (*Item, error) {
	data, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := c.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if len(parsed.Items) == 0 {
		return nil, nil
	}

	item := c.normalizeItem(parsed.Items[0])
	return &item, nil
}

func (c *Client) fetchFeed(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (c *Client) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:  cmp.Or(item.GUID, item.Link),
		Title: item.Title,
		Link:  item.Link,
	}

	// gofeed parses feed timestamps into absolute UTC-aware instants
	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		normalized.Enclosures = append(normalized.Enclosures, Enclosure{
			URL:    enclosure.URL,
			Type:   enclosure.Type,
			Length: parseLength(enclosure.Length),
		})
	}

	normalized.ContentLength = declaredContentLength(item, normalized.Enclosures)

	return normalized
}

// declaredContentLength extracts the size the feed declares for the
// torrent payload: the torrent namespace extension takes precedence,
// then a positive enclosure length attribute.
func declaredContentLength(item *gofeed.Item, enclosures []Enclosure) int64 {
	if ns, ok := item.Extensions["torrent"]; ok {
		for _, key := range []string{"contentLength", "contentlength"} {
			for _, ext := range ns[key] {
				if v, err := strconv.ParseInt(strings.TrimSpace(ext.Value), 10, 64); err == nil && v > 0 {
					return v
				}
			}
		}
	}

	for _, enclosure := range enclosures {
		if enclosure.Length > 0 {
			return enclosure.Length
		}
	}

	return 0
}

func parseLength(raw string) int64 {
	if raw == "" {
		return 0
	}
	length, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || length < 0 {
		return 0
	}
	return length
}
