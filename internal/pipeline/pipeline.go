// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences fetch, validation, and classification across
// a batch of snapshot files and produces a run summary. Files are processed
// one at a time in the order supplied; a failure on one file never aborts
// the batch.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/conflict-monitor/internal/classify"
	"github.com/pdiddy/conflict-monitor/internal/fetch"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

// Source supplies the content for a listed snapshot file. The remote
// fetch.Client and the local fetch.DirSource both implement it.
type Source interface {
	Content(ctx context.Context, f fetch.File) ([]byte, error)
}

// Outcome records the result for one processed file.
type Outcome struct {
	Filename string                 `json:"filename" yaml:"filename"`
	Date     time.Time              `json:"date" yaml:"date"`
	Verdict  types.Verdict          `json:"verdict" yaml:"verdict"`
	Result   types.ValidationResult `json:"result" yaml:"result"`
}

// Result holds the outcome of one pipeline run. Accepted snapshots appear
// in input order.
type Result struct {
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Processed int `json:"processed" yaml:"processed"`
	Passed    int `json:"passed" yaml:"passed"`
	Failed    int `json:"failed" yaml:"failed"`

	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`

	// Accepted holds the snapshots that passed, in processing order.
	Accepted []*types.Snapshot `json:"-" yaml:"-"`

	// WriteErrors records quarantine or summary writes that failed. The
	// affected files still count as quarantined.
	WriteErrors []string `json:"write_errors,omitempty" yaml:"write_errors,omitempty"`
}

// HasFailures reports whether any snapshots failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// ProcessFiles runs the batch: for each file, obtain content, parse JSON,
// classify, and record the verdict. Fetch failures and parse failures are
// per-file outcomes, not batch failures. Per-file status and the final
// summary are written to w.
func ProcessFiles(ctx context.Context, files []fetch.File, src Source, cfg types.PipelineConfig, w io.Writer) Result {
	result := Result{StartedAt: time.Now()}
	clf := classify.New(cfg.QuarantineDir, cfg.Validation)

	for _, f := range files {
		result.Processed++

		raw, err := src.Content(ctx, f)
		if err != nil {
			fmt.Fprintf(w, "failed:      %s (%v)\n", f.Name, err)
			result.Failed++
			result.Outcomes = append(result.Outcomes, Outcome{
				Filename: f.Name,
				Date:     f.Date,
				Verdict:  types.VerdictFetchFailed,
				Result: types.ValidationResult{
					Errors: []string{fmt.Sprintf("Fetch failed: %v", err)},
				},
			})
			continue
		}

		snap := &types.Snapshot{Filename: f.Name, Date: f.Date, Raw: raw}

		var data map[string]any
		parseErr := json.Unmarshal(raw, &data)
		if parseErr == nil {
			snap.Data = data
		}

		verdict, res, werr := clf.Classify(snap, parseErr)
		if werr != nil {
			fmt.Fprintf(w, "warning: %v\n", werr)
			result.WriteErrors = append(result.WriteErrors, werr.Error())
		}

		result.Outcomes = append(result.Outcomes, Outcome{
			Filename: f.Name,
			Date:     f.Date,
			Verdict:  verdict,
			Result:   res,
		})

		switch verdict {
		case types.VerdictAccepted:
			result.Passed++
			result.Accepted = append(result.Accepted, snap)
			if n := len(res.Warnings); n > 0 {
				fmt.Fprintf(w, "passed:      %s (%d warnings)\n", f.Name, n)
			} else {
				fmt.Fprintf(w, "passed:      %s\n", f.Name)
			}
		default:
			result.Failed++
			fmt.Fprintf(w, "quarantined: %s (%d errors)\n", f.Name, len(res.Errors))
		}
	}

	result.FinishedAt = time.Now()
	fmt.Fprintf(w, "\nBatch summary: %d processed, %d passed, %d failed\n",
		result.Processed, result.Passed, result.Failed)

	if cfg.SummaryPath != "" {
		if err := writeSummary(result, cfg.SummaryPath); err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
			result.WriteErrors = append(result.WriteErrors, err.Error())
		}
	}

	return result
}

// ProcessFile classifies a single snapshot whose content is already in
// hand. Used by callers that do their own fetching.
func ProcessFile(filename string, raw []byte, cfg types.PipelineConfig) (types.Verdict, types.ValidationResult, error) {
	clf := classify.New(cfg.QuarantineDir, cfg.Validation)

	snap := &types.Snapshot{Filename: filename, Raw: raw}
	if date, ok := fetch.ParseName(filename); ok {
		snap.Date = date
	}

	var data map[string]any
	parseErr := json.Unmarshal(raw, &data)
	if parseErr == nil {
		snap.Data = data
	}
	return clf.Classify(snap, parseErr)
}

// writeSummary renders the run result as YAML for downstream tooling.
func writeSummary(result Result, path string) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}
	return nil
}
