package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxSourceSize caps the number of bytes read from a model or palette source.
const MaxSourceSize int64 = 256 << 20

// IsRemote reports whether source is an http(s) URL rather than a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// BinaryLoader reads raw bytes from a local path or an http(s) URL.
type BinaryLoader struct {
	Client *http.Client
}

func (bl *BinaryLoader) Read(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return bl.fetch(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, MaxSourceSize))
}

func (bl *BinaryLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := bl.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxSourceSize))
}
