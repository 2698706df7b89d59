// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "conflict-monitor/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the snapshot fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// ListingURL is the endpoint that lists available snapshot files as a
	// JSON array of {name, download_url} entries.
	ListingURL string `json:"listing_url" yaml:"listing_url"`

	// APIToken, when set, is sent as a Bearer token on listing and
	// download requests.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// MaxFiles is the number of most recent snapshots to select (default 7).
	MaxFiles int `json:"max_files" yaml:"max_files"`

	// ListingTimeout bounds the listing call (default 10s); Timeout bounds
	// content downloads (default 30s).
	ListingTimeout time.Duration `json:"listing_timeout" yaml:"listing_timeout"`
}

// ValidationConfig tunes the business rule validator.
type ValidationConfig struct {
	// FlagAllDuplicates flags every occurrence of a duplicated unit id,
	// including the first. Off by default: only repeats are flagged.
	FlagAllDuplicates bool `json:"flag_all_duplicates" yaml:"flag_all_duplicates"`

	// FatalCodes lists warning codes that force a snapshot to fail.
	// Empty by default: warnings never fail a snapshot on their own.
	FatalCodes []string `json:"fatal_codes" yaml:"fatal_codes"`
}

// PipelineConfig holds settings for one validation run.
type PipelineConfig struct {
	// QuarantineDir is where failing snapshots and their error reports are
	// written. There is no implicit default; callers set it explicitly.
	QuarantineDir string `json:"quarantine_dir" yaml:"quarantine_dir"`

	// SummaryPath, when set, is where the run summary YAML is written.
	SummaryPath string `json:"summary_path,omitempty" yaml:"summary_path,omitempty"`

	Validation ValidationConfig `json:"validation" yaml:"validation"`
}

// ArchiveConfig holds settings for the run-history store.
type ArchiveConfig struct {
	// ArchiveDir is the directory holding history.db.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxRuns is the default number of runs shown by history (default 10).
	MaxRuns int `json:"max_runs" yaml:"max_runs"`
}

// Config groups all stage configurations.
type Config struct {
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Archive  ArchiveConfig  `json:"archive" yaml:"archive"`
}
