package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// DownloadRequest is one locator submitted to a batch. Immutable once enqueued.
type DownloadRequest struct {
	ID         string
	URL        string
	Options    DownloadOptions
	EnqueuedAt time.Time
}

// NewDownloadRequest builds a request with a fresh ID and enqueue timestamp.
func NewDownloadRequest(rawURL string, opts DownloadOptions) *DownloadRequest {
	return &DownloadRequest{
		ID:         uuid.NewString(),
		URL:        rawURL,
		Options:    opts,
		EnqueuedAt: time.Now(),
	}
}

// Validate checks the request before it is accepted into a batch.
func (r *DownloadRequest) Validate() error {
	if r.URL == "" {
		return errors.New("request URL is empty")
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid request URL %q: %w", r.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q for %q", u.Scheme, r.URL)
	}
	return r.Options.Validate()
}

// DownloadOptions holds the per-request knobs handed to the download engine.
// Fields mirror yt-dlp flags; zero values mean "engine default".
type DownloadOptions struct {
	Format         string
	OutputDir      string
	OutputTemplate string
	MaxFilesize    string
	CookieSource   string
	CookieFile     string
	Retries        int
	ExtraArgs      []string
}

// Validate rejects option combinations the engine cannot act on.
func (o *DownloadOptions) Validate() error {
	if o.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", o.Retries)
	}
	if o.CookieSource != "" && o.CookieFile != "" {
		return errors.New("cookie source browser and cookie file are mutually exclusive")
	}
	return nil
}
