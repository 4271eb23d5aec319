package infra

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// ImageCache downloads and caches order thumbnail images. Order
// messages show a small accessory image next to the description; the
// cache keeps the renderer from re-fetching it on every redraw.
type ImageCache struct {
	basePath string
	client   *http.Client
}

// NewImageCache creates an ImageCache under the user config directory.
func NewImageCache() (*ImageCache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	path := filepath.Join(configDir, "OrderBot", "assets", "thumbs")

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &ImageCache{
		basePath: path,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Fetch downloads the image at rawURL if not already cached and
// returns the local file path. Thumbnails are resized to 96x96.
func (c *ImageCache) Fetch(rawURL string) (string, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}

	// Cache key from the URL hash: order images are arbitrary links,
	// not path-safe names.
	sum := sha1.Sum([]byte(rawURL))
	filePath := filepath.Join(c.basePath, hex.EncodeToString(sum[:8])+".png")

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache hit
	}

	resp, err := c.client.Get(rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(srcImg, 96, 96, imaging.Lanczos)

	if err := imaging.Save(thumb, filePath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return filePath, nil
}
