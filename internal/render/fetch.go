package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultUserAgent is sent with every fetch request
const DefaultUserAgent = "gridsplit/1.0"

// Fetcher downloads source images over HTTP
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher creates a fetcher; maxBytes <= 0 disables the size limit
func NewFetcher(userAgent string, maxBytes int64) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// IsURL reports whether s names an http or https resource
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads and decodes the image at rawURL. The returned filename is
// the last path segment of the URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, image.Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, &DecodeError{Op: "fetch", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", nil, &DecodeError{Op: "fetch", Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, &DecodeError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &DecodeError{Op: "fetch", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes)
	}
	img, err := Decode(body)
	if err != nil {
		return "", nil, err
	}
	return path.Base(u.Path), img, nil
}
