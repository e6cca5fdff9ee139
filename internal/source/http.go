package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError reports a non-2xx response from a remote source.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTP fetches the manifest and posts from a site that is already deployed,
// e.g. https://example.com/ serving posts.json and post/.
type HTTP struct {
	BaseURL      string
	ManifestName string
	PostsDir     string
	Client       *http.Client
}

// NewHTTP returns an HTTP source. A zero timeout leaves the client without
// one.
func NewHTTP(baseURL, manifestName, postsDir string, timeout time.Duration) *HTTP {
	return &HTTP{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		ManifestName: manifestName,
		PostsDir:     strings.Trim(postsDir, "/"),
		Client:       &http.Client{Timeout: timeout},
	}
}

// Manifest fetches and decodes the manifest.
func (h *HTTP) Manifest(ctx context.Context) ([]string, error) {
	data, err := h.get(ctx, h.BaseURL+"/"+escapePath(strings.Trim(h.ManifestName, "/")))
	if err != nil {
		return nil, err
	}
	return decodeManifest(h.ManifestName, data)
}

// Content fetches a single post.
func (h *HTTP) Content(ctx context.Context, filename string) (string, error) {
	if err := checkLocal(filename); err != nil {
		return "", err
	}
	u := h.BaseURL + "/" + escapePath(filename)
	if h.PostsDir != "" {
		u = h.BaseURL + "/" + escapePath(h.PostsDir) + "/" + escapePath(filename)
	}
	data, err := h.get(ctx, u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// escapePath escapes each segment of a slash-separated path, keeping the
// separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func (h *HTTP) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", u, err)
	}
	return data, nil
}
