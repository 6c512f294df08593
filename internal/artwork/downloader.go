// ABOUTME: Album art cache for Mopidy library images
// ABOUTME: Resolves image URIs against the server and caches them on disk
package artwork

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/mopidy-go/internal/version"
	"github.com/harperreed/mopidy-go/pkg/models"
)

// ImageLister is the part of the library API artwork needs
type ImageLister interface {
	GetImages(ctx context.Context, uris []string) (map[string][]models.Image, error)
}

// Config holds downloader configuration
type Config struct {
	// BaseURL is the server's HTTP base, e.g. http://localhost:6680.
	// Mopidy-Local returns image paths like /local/abc.jpg relative to it.
	BaseURL string

	// CacheDir defaults to <tmp>/mopidy-artwork
	CacheDir string

	Client *http.Client
}

// Downloader manages artwork downloads
type Downloader struct {
	base     *url.URL
	cacheDir string
	client   *http.Client

	mu          sync.Mutex
	currentPath string
}

// NewDownloader creates a new artwork downloader
func NewDownloader(config Config) (*Downloader, error) {
	if config.CacheDir == "" {
		config.CacheDir = filepath.Join(os.TempDir(), "mopidy-artwork")
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	var base *url.URL
	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
		}
		base = u
	}

	return &Downloader{
		base:     base,
		cacheDir: config.CacheDir,
		client:   config.Client,
	}, nil
}

// HTTPBase derives the server's HTTP base from its WebSocket URL
func HTTPBase(wsURL string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", wsURL, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", wsURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Resolve turns an image URI into an absolute HTTP URL
func (d *Downloader) Resolve(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid image URI %q: %w", uri, err)
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported image scheme %q", u.Scheme)
		}
		return u.String(), nil
	}
	if d.base == nil {
		return "", fmt.Errorf("relative image URI %q without a base URL", uri)
	}
	return d.base.ResolveReference(u).String(), nil
}

// Download fetches artwork and returns its cache path
func (d *Downloader) Download(ctx context.Context, uri string) (string, error) {
	if uri == "" {
		return "", nil
	}

	src, err := d.Resolve(uri)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256([]byte(src))
	filename := fmt.Sprintf("%x%s", hash[:8], getExtension(src))
	cachePath := filepath.Join(d.cacheDir, filename)

	if _, err := os.Stat(cachePath); err == nil {
		log.Printf("Artwork cache hit: %s", cachePath)
		d.setCurrent(cachePath)
		return cachePath, nil
	}

	log.Printf("Downloading artwork: %s", src)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build artwork request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artwork download failed: HTTP %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed copy never leaves a cache hit
	tmp, err := os.CreateTemp(d.cacheDir, "partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save artwork: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save artwork: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save artwork: %w", err)
	}

	log.Printf("Artwork saved: %s", cachePath)
	d.setCurrent(cachePath)
	return cachePath, nil
}

// ForTrack looks up the images for trackURI and downloads the largest.
// It returns "" when the server has no artwork for the track.
func (d *Downloader) ForTrack(ctx context.Context, lib ImageLister, trackURI string) (string, error) {
	images, err := lib.GetImages(ctx, []string{trackURI})
	if err != nil {
		return "", fmt.Errorf("get images for %s: %w", trackURI, err)
	}
	best, ok := Largest(images[trackURI])
	if !ok {
		return "", nil
	}
	return d.Download(ctx, best.URI)
}

// Largest picks the image with the biggest area. Images without
// dimensions lose to any sized image.
func Largest(images []models.Image) (models.Image, bool) {
	if len(images) == 0 {
		return models.Image{}, false
	}
	best, bestArea := images[0], area(images[0])
	for _, img := range images[1:] {
		if a := area(img); a > bestArea {
			best, bestArea = img, a
		}
	}
	return best, true
}

func area(img models.Image) int {
	if img.Width == nil || img.Height == nil {
		return 0
	}
	return *img.Width * *img.Height
}

func (d *Downloader) setCurrent(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentPath = path
}

// CurrentPath returns the path to the current artwork
func (d *Downloader) CurrentPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentPath
}

// getExtension extracts file extension from URL
func getExtension(u string) string {
	u = strings.Split(u, "?")[0]

	ext := filepath.Ext(u)
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return ext
}

// Cleanup removes cached artwork
func (d *Downloader) Cleanup() error {
	return os.RemoveAll(d.cacheDir)
}
