// Package qbittorrent submits torrents through the qBittorrent WebUI
// API (v2). Each submission is a single login + add exchange; no
// long-lived session is kept.
package qbittorrent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	loginTimeout = 10 * time.Second
	addTimeout   = 20 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

// AddRequest carries one torrent submission. When Raw holds the torrent
// file contents they are uploaded directly; otherwise qBittorrent
// downloads URL itself.
type AddRequest struct {
	URL              string
	Raw              []byte
	SavePath         string
	Category         string
	Tags             string
	RatioLimit       float64
	SeedingTimeLimit int
}

func NewClient(httpClient *http.Client, baseURL, username, password string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
	}
}

// Add authenticates against the WebUI and submits the torrent. Any
// failure leaves the caller's state untouched.
func (c *Client) Add(ctx context.Context, add AddRequest) error {
	cookies, err := c.login(ctx)
	if err != nil {
		return err
	}
	slog.Debug("Authenticated to qBittorrent", "url", c.baseURL)

	if len(add.Raw) > 0 {
		return c.addFromBytes(ctx, add, cookies)
	}
	return c.addFromURL(ctx, add, cookies)
}

func (c *Client) login(ctx context.Context) ([]*http.Cookie, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	form := url.Values{
		"username": {c.username},
		"password": {c.password},
	}

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qBittorrent login failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response: %w", err)
	}

	// The WebUI reports a bad login with 200 and a non-"Ok." body
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Ok." {
		return nil, fmt.Errorf("qBittorrent login rejected: status %d, body %q", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp.Cookies(), nil
}

func (c *Client) addFromURL(ctx context.Context, add AddRequest, cookies []*http.Cookie) error {
	form := url.Values{"urls": {add.URL}}
	for key, value := range c.addFields(add) {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v2/torrents/add", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.doAdd(ctx, req, cookies)
}

func (c *Client) addFromBytes(ctx context.Context, add AddRequest, cookies []*http.Cookie) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("torrents", "download.torrent")
	if err != nil {
		return fmt.Errorf("failed to create torrent part: %w", err)
	}
	if _, err := part.Write(add.Raw); err != nil {
		return fmt.Errorf("failed to write torrent part: %w", err)
	}

	for key, value := range c.addFields(add) {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v2/torrents/add", &buf)
	if err != nil {
		return fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doAdd(ctx, req, cookies)
}

func (c *Client) addFields(add AddRequest) map[string]string {
	return map[string]string{
		"savepath":         add.SavePath,
		"category":         add.Category,
		"tags":             add.Tags,
		"ratioLimit":       strconv.FormatFloat(add.RatioLimit, 'f', -1, 64),
		"seedingTimeLimit": strconv.Itoa(add.SeedingTimeLimit),
	}
}

func (c *Client) doAdd(ctx context.Context, req *http.Request, cookies []*http.Cookie) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, addTimeout)
	defer cancel()
	req = req.WithContext(timeoutCtx)

	req.Header.Set("Referer", c.baseURL)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to add torrent: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qBittorrent rejected torrent: status %d", resp.StatusCode)
	}

	return nil
}
