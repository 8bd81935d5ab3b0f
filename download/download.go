// Package download saves resolved media to disk. It plays the part of the
// browser's download facility: one GET, streamed to a temporary file,
// renamed into place once complete.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/hazyhaar/reelkeeper/horosafe"
)

const (
	partialSuffix = ".part"
	filePrefix    = "reel"
	fileExt       = ".mp4"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Naming selects the file name pattern.
type Naming int

const (
	// NameWithShortcode produces reel_{shortcode}_{millis}.mp4.
	NameWithShortcode Naming = iota
	// NameTimestamp produces reel_{millis}.mp4.
	NameTimestamp
)

// ParseNaming maps a config value to a Naming. Unknown values use
// NameWithShortcode.
func ParseNaming(s string) Naming {
	if s == "timestamp" {
		return NameTimestamp
	}
	return NameWithShortcode
}

// Job is a single file to save.
type Job struct {
	URL       string
	Shortcode string
}

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// FileName builds the output name for a job started at t.
func FileName(naming Naming, shortcode string, t time.Time) string {
	ts := strconv.FormatInt(t.UnixMilli(), 10)
	code := unsafeChars.ReplaceAllString(shortcode, "_")
	if naming == NameTimestamp || code == "" {
		return filePrefix + "_" + ts + fileExt
	}
	return filePrefix + "_" + code + "_" + ts + fileExt
}

// Saver writes media files into a directory.
type Saver struct {
	client   *http.Client
	dir      string
	naming   Naming
	validate func(string) error
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Saver.
type Option func(*Saver)

// WithClient sets the HTTP client used to fetch media.
func WithClient(c *http.Client) Option {
	return func(s *Saver) { s.client = c }
}

// WithNaming selects the file name pattern.
func WithNaming(n Naming) Option {
	return func(s *Saver) { s.naming = n }
}

// WithURLValidator replaces horosafe.ValidateURL.
func WithURLValidator(fn func(string) error) Option {
	return func(s *Saver) { s.validate = fn }
}

// WithClock overrides time.Now, for deterministic names.
func WithClock(now func() time.Time) Option {
	return func(s *Saver) { s.now = now }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Saver) { s.logger = l }
}

// New creates a Saver writing into dir.
func New(dir string, opts ...Option) *Saver {
	s := &Saver{
		client:   &http.Client{},
		dir:      dir,
		naming:   NameWithShortcode,
		validate: horosafe.ValidateURL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dispatch fetches job.URL and stores it. It returns the final file path.
func (s *Saver) Dispatch(ctx context.Context, job Job) (string, error) {
	if job.URL == "" {
		return "", errors.New("download: empty media URL")
	}
	if err := s.validate(job.URL); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	name := FileName(s.naming, job.Shortcode, s.now())
	dst, err := horosafe.SafePath(s.dir, name)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("download: mkdir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return "", fmt.Errorf("download: new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download: http %d", resp.StatusCode)
	}

	tmp, n, err := writeTemp(s.dir, filepath.Base(dst), resp.Body)
	if err != nil {
		if tmp != "" {
			os.Remove(tmp)
		}
		return "", fmt.Errorf("download: write: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download: rename: %w", err)
	}

	s.logger.Info("download: saved", "path", dst, "bytes", n, "shortcode", job.Shortcode)
	return dst, nil
}

// writeTemp streams r into a fresh partial file next to the destination.
// Concurrent downloads of the same name never share one.
func writeTemp(dir, name string, r io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(dir, name+".*"+partialSuffix)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Chmod(0o644)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return f.Name(), n, err
}
