// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch lists and downloads date-named snapshot files from a
// remote file listing. The listing is a JSON array of {name, download_url}
// entries; only names of the form YYYY-MM-DD.json are considered snapshots.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/pdiddy/conflict-monitor/internal/httputil"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

// snapshotName matches date-based snapshot filenames, e.g. "2024-05-01.json".
var snapshotName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.json$`)

const dateLayout = "2006-01-02"

// File describes one snapshot file available for download.
type File struct {
	Name        string
	DownloadURL string
	Date        time.Time
}

// Client fetches snapshot listings and content over HTTP.
type Client struct {
	http *http.Client
	cfg  types.FetchConfig
}

// NewClient builds a Client from cfg. The client timeout bounds content
// downloads; listing calls get the tighter ListingTimeout via context.
func NewClient(cfg types.FetchConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ListingTimeout == 0 {
		cfg.ListingTimeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// listingEntry mirrors one element of the remote listing response.
type listingEntry struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// List fetches the remote listing and returns the snapshot files found,
// sorted most recent first. Entries whose names are not date-based
// snapshot filenames are ignored.
func (c *Client) List(ctx context.Context) ([]File, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ListingTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, c.cfg.ListingURL)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.cfg.ListingURL)
	}

	var entries []listingEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing listing response: %w", err)
	}

	var files []File
	for _, e := range entries {
		date, ok := ParseName(e.Name)
		if !ok {
			continue
		}
		files = append(files, File{Name: e.Name, DownloadURL: e.DownloadURL, Date: date})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Date.After(files[j].Date)
	})
	return files, nil
}

// Latest returns the files to process: the MaxFiles most recent entries of
// an already sorted listing (default 7).
func (c *Client) Latest(files []File) []File {
	n := c.cfg.MaxFiles
	if n <= 0 {
		n = 7
	}
	if len(files) > n {
		files = files[:n]
	}
	return files
}

// Content downloads one snapshot file and returns its bytes verbatim.
func (c *Client) Content(ctx context.Context, f File) ([]byte, error) {
	req, err := c.newRequest(ctx, f.DownloadURL)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, f.DownloadURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	return req, nil
}

// ParseName extracts the date from a date-named snapshot filename.
func ParseName(name string) (time.Time, bool) {
	m := snapshotName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
