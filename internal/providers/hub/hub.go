// Package hub downloads index artifacts from a Hugging Face dataset repository.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/log"
	"github.com/sandevgo/ceramicsrag/pkg/retry"
)

const DefaultEndpoint = "https://huggingface.co"

type Client struct {
	endpoint string
	token    string
	cacheDir string
	client   *http.Client
	retrier  *retry.Retrier
}

func NewClient(endpoint, token, cacheDir string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 10 * time.Minute},
		retrier:  retry.NewDefaultRetrier(),
	}
}

func (c *Client) WithRetrier(r *retry.Retrier) *Client {
	c.retrier = r
	return c
}

// CachePath is where Fetch stores repo/revision/filename.
func (c *Client) CachePath(repo, revision, filename string) string {
	return filepath.Join(c.cacheDir, filepath.FromSlash(repo), revision, filepath.FromSlash(filename))
}

// Fetch returns a local path to filename from a dataset repo, downloading it
// on first use. Later calls reuse the cached copy without network access.
func (c *Client) Fetch(ctx context.Context, repo, revision, filename string) (string, error) {
	if repo == "" || filename == "" {
		return "", fmt.Errorf("%w: repo and filename are required", core.ErrIndexUnavailable)
	}
	if revision == "" {
		revision = "main"
	}

	dst := c.CachePath(repo, revision, filename)
	if _, err := os.Stat(dst); err == nil {
		log.FromCtx(ctx).Debug().Str("path", dst).Msg("using cached index artifact")
		return dst, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %w", core.ErrIndexUnavailable, err)
	}

	src := fmt.Sprintf("%s/datasets/%s/resolve/%s/%s", c.endpoint, repo, url.PathEscape(revision), filename)
	logger := log.FromCtx(ctx).With().Str("url", src).Logger()
	logger.Info().Msg("downloading index artifact")

	err := c.retrier.Do(ctx, func() error {
		err := c.download(ctx, src, dst)
		if err != nil {
			logger.Warn().Err(err).Msg("download failed")
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrIndexUnavailable, err)
	}

	logger.Info().Str("path", dst).Msg("index artifact cached")
	return dst, nil
}

var errNotFound = errors.New("not found")

func (c *Client) download(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("User-Agent", core.AppUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(fmt.Errorf("%s: %w", src, errNotFound))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return retry.Permanent(fmt.Errorf("http %d: access denied, check HF_TOKEN", resp.StatusCode))
	default:
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return retry.Permanent(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Rename is atomic, so a partial download is never visible in the cache.
	return os.Rename(tmp.Name(), dst)
}
