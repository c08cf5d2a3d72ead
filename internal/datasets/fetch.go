// Package datasets downloads raw dataset files and turns them into views.
package datasets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
)

// DefaultMaxBytes caps a single download after decompression.
const DefaultMaxBytes = 512 << 20

// Fetcher downloads dataset files over HTTP.
type Fetcher struct {
	// Client performs requests. Defaults to a client with a 5 minute timeout.
	Client *http.Client

	// Logger receives progress records. Defaults to discarding.
	Logger *slog.Logger

	// MaxBytes caps the decompressed size of one file. Zero means
	// DefaultMaxBytes.
	MaxBytes int64
}

// NewFetcher returns a fetcher with default settings.
func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{Logger: logger}
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 5 * time.Minute}
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (f *Fetcher) maxBytes() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return DefaultMaxBytes
}

// Fetch downloads url and returns its contents. Gzip payloads (detected
// by their magic bytes) are decompressed transparently.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := f.logger()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	limit := f.maxBytes()
	raw, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	data := raw
	if isGzip(raw) {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: gzip: %w", url, err)
		}
		data, err = readLimited(zr, limit)
		_ = zr.Close()
		if err != nil {
			return nil, fmt.Errorf("fetch %s: gzip: %w", url, err)
		}
	}

	logger.Info("fetched dataset file",
		"url", url,
		"bytes", len(raw),
		"decompressed", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("content exceeds %d bytes", limit)
	}
	return data, nil
}
