// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Verdict is the outcome of classifying one snapshot.
type Verdict string

const (
	VerdictAccepted    Verdict = "accepted"
	VerdictQuarantined Verdict = "quarantined"
	// VerdictFetchFailed marks files whose content never arrived; there are
	// no bytes to quarantine, but the file still counts as failed.
	VerdictFetchFailed Verdict = "fetch_failed"
)

// Warning codes emitted by the business rule validator.
const (
	CodeInvalidCoordinate = "INVALID_COORDINATE"
	CodeCountMismatch     = "COUNT_MISMATCH"
	CodeDuplicateUnitID   = "DUPLICATE_UNIT_ID"
)

// Snapshot is one date-named conflict-map document as fetched.
// Raw holds the exact bytes received; Data is the parsed JSON object and is
// nil when parsing failed. Snapshots are read-only once built.
type Snapshot struct {
	// Filename is the date-based name from the listing (e.g. "2024-05-01.json").
	Filename string `json:"filename" yaml:"filename"`

	// Date is parsed from the filename.
	Date time.Time `json:"date" yaml:"date"`

	// Raw is the document content, byte for byte.
	Raw []byte `json:"-" yaml:"-"`

	// Data is the parsed top-level JSON object, nil if Raw is not valid JSON.
	Data map[string]any `json:"-" yaml:"-"`
}

// Warning is one business-rule finding. Warnings are advisory: under the
// default policy they never fail a snapshot on their own.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResult is produced once per snapshot and backs the error report.
// A non-empty Errors list always means IsValid is false.
type ValidationResult struct {
	IsValid  bool      `json:"is_valid" yaml:"is_valid"`
	Errors   []string  `json:"errors" yaml:"errors"`
	Warnings []Warning `json:"warnings" yaml:"warnings"`
}
