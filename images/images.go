// Package images downloads article cover images to a local directory.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DownloadFailed is returned by Save in place of a path when the image could
// not be stored.
const DownloadFailed = "Download failed."

// DefaultDir is where images are saved unless configured otherwise.
const DefaultDir = "scraped_images"

// Downloader saves images for one session. File names carry the session name
// so parallel sessions never write to the same file.
type Downloader struct {
	dir     string
	session string
	client  *http.Client
	logger  *log.Logger
}

// NewDownloader creates a downloader writing into dir, creating it if
// needed. A nil client uses a client with a 30s timeout.
func NewDownloader(dir, session string, client *http.Client, logger *log.Logger) (*Downloader, error) {
	// 0700: owner-only access
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Downloader{
		dir:     dir,
		session: session,
		client:  client,
		logger:  logger,
	}, nil
}

// Save downloads imageURL as the cover image of the index-th article and
// returns the local path, or DownloadFailed.
func (d *Downloader) Save(ctx context.Context, imageURL string, index int) string {
	path := filepath.Join(d.dir, FileName(imageURL, index, d.session))

	if err := d.download(ctx, imageURL, path); err != nil {
		d.logger.Warn("image download failed", "url", imageURL, "err", err)
		return DownloadFailed
	}

	d.logger.Debug("saved image", "path", path)
	return path
}

func (d *Downloader) download(ctx context.Context, imageURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write image: %w", err)
	}

	return f.Close()
}

// FileName returns article_<index>_<session>.<ext> with the session name
// sanitized.
func FileName(imageURL string, index int, session string) string {
	return fmt.Sprintf("article_%d_%s.%s", index, Sanitize(session), Extension(imageURL))
}

// Extension returns the text after the last "." of imageURL up to any query
// string. Empty, overlong or path-like results become "jpg".
func Extension(imageURL string) string {
	ext := imageURL
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i+1:]
	}
	ext, _, _ = strings.Cut(ext, "?")

	if ext == "" || len(ext) > 4 || strings.ContainsAny(ext, `/\#`) {
		return "jpg"
	}
	return ext
}

// Sanitize replaces every character outside [a-zA-Z0-9] with "_".
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}
