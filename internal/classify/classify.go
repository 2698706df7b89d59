// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify turns validation results into verdicts and routes
// failing snapshots to a quarantine directory with an error report.
package classify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/conflict-monitor/internal/validate"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

// Classifier validates snapshots and quarantines the ones that fail. The
// quarantine directory is explicit configuration; it is created on first
// use, never as an import side effect.
type Classifier struct {
	quarantineDir string
	cfg           types.ValidationConfig
}

// New returns a Classifier writing to quarantineDir.
func New(quarantineDir string, cfg types.ValidationConfig) *Classifier {
	return &Classifier{quarantineDir: quarantineDir, cfg: cfg}
}

// Classify validates one snapshot and routes it. A non-nil parseErr means
// the raw bytes were not valid JSON; that counts as a structural failure
// and the unparsed bytes are what gets quarantined. A returned error means
// a quarantine write failed; the verdict still stands and callers may
// continue with the rest of the batch.
func (c *Classifier) Classify(snap *types.Snapshot, parseErr error) (types.Verdict, types.ValidationResult, error) {
	var result types.ValidationResult
	if parseErr != nil {
		result = types.ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("Invalid JSON: %v", parseErr)},
		}
	} else {
		result = validate.Document(snap.Data, c.cfg)
	}

	if result.IsValid {
		return types.VerdictAccepted, result, nil
	}

	if err := c.quarantine(snap, result); err != nil {
		return types.VerdictQuarantined, result, err
	}
	return types.VerdictQuarantined, result, nil
}

// quarantine writes the raw snapshot bytes verbatim plus the rendered
// error report. The two writes are best effort, not transactional: a crash
// between them leaves a partial quarantine entry.
func (c *Classifier) quarantine(snap *types.Snapshot, result types.ValidationResult) error {
	if err := os.MkdirAll(c.quarantineDir, 0o755); err != nil {
		return fmt.Errorf("creating quarantine directory %s: %w", c.quarantineDir, err)
	}

	rawPath := filepath.Join(c.quarantineDir, snap.Filename)
	if err := os.WriteFile(rawPath, snap.Raw, 0o644); err != nil {
		return fmt.Errorf("writing quarantined snapshot %s: %w", rawPath, err)
	}

	reportPath := filepath.Join(c.quarantineDir, ReportName(snap.Filename))
	if err := os.WriteFile(reportPath, []byte(RenderReport(snap.Filename, result)), 0o644); err != nil {
		return fmt.Errorf("writing error report %s: %w", reportPath, err)
	}
	return nil
}
