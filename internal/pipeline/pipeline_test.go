// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/conflict-monitor/internal/fetch"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

const validSnapshotJSON = `{
	"areas": [[[36.2, 49.9], [36.3, 50.0]]],
	"areas_ua": [],
	"frontline": [[[37.5, 47.1], [37.6, 47.2]]],
	"geos": {"ru": [{"c": [36.2, 49.9]}], "ua": []},
	"unit_count": {"ru": 1, "ua": 1},
	"units": {"ru": [["RU-001", 36.2, 49.9]], "ua": [["UA-001", 30.5, 50.4]]}
}`

// missingAreasUA is structurally invalid: areas_ua is absent.
const missingAreasUA = `{
	"areas": [],
	"frontline": [],
	"geos": {"ru": [], "ua": []},
	"unit_count": {"ru": 0, "ua": 0},
	"units": {"ru": [], "ua": []}
}`

func writeSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProcessFilesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "2024-05-01.json", validSnapshotJSON)
	writeSnapshotFile(t, dir, "2024-05-02.json", validSnapshotJSON)
	writeSnapshotFile(t, dir, "2024-05-03.json", missingAreasUA)
	writeSnapshotFile(t, dir, "2024-05-04.json", validSnapshotJSON)
	writeSnapshotFile(t, dir, "2024-05-05.json", validSnapshotJSON)

	src := fetch.DirSource{Dir: dir}
	files, err := src.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 5 {
		t.Fatalf("listed %d files, want 5", len(files))
	}

	quarantine := filepath.Join(t.TempDir(), "quarantine")
	var out bytes.Buffer
	result := ProcessFiles(context.Background(), files, src,
		types.PipelineConfig{QuarantineDir: quarantine}, &out)

	if result.Processed != 5 || result.Passed != 4 || result.Failed != 1 {
		t.Fatalf("summary = %d/%d/%d, want 5 processed, 4 passed, 1 failed",
			result.Processed, result.Passed, result.Failed)
	}

	// Accepted collection preserves input order (most recent first).
	if len(result.Accepted) != 4 {
		t.Fatalf("accepted = %d snapshots, want 4", len(result.Accepted))
	}
	wantOrder := []string{"2024-05-05.json", "2024-05-04.json", "2024-05-02.json", "2024-05-01.json"}
	for i, want := range wantOrder {
		if result.Accepted[i].Filename != want {
			t.Fatalf("accepted[%d] = %s, want %s", i, result.Accepted[i].Filename, want)
		}
	}

	// Quarantine holds exactly the raw file and its report.
	entries, err := os.ReadDir(quarantine)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("quarantine has %d files, want 2", len(entries))
	}
	report, err := os.ReadFile(filepath.Join(quarantine, "2024-05-03_errors.txt"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(report), "1. Missing required field: areas_ua") {
		t.Fatalf("report missing expected line:\n%s", report)
	}

	if !strings.Contains(out.String(), "Batch summary: 5 processed, 4 passed, 1 failed") {
		t.Fatalf("summary line missing from output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "quarantined: 2024-05-03.json (1 errors)") {
		t.Fatalf("quarantine status line missing:\n%s", out.String())
	}
}

func TestProcessFilesParseFailure(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "2024-06-01.json", `{broken`)

	src := fetch.DirSource{Dir: dir}
	files, err := src.List()
	if err != nil {
		t.Fatal(err)
	}

	quarantine := filepath.Join(t.TempDir(), "quarantine")
	var out bytes.Buffer
	result := ProcessFiles(context.Background(), files, src,
		types.PipelineConfig{QuarantineDir: quarantine}, &out)

	if result.Failed != 1 || result.Passed != 0 {
		t.Fatalf("summary = %+v, want 1 failed", result)
	}

	// Unparsed bytes land in quarantine verbatim.
	raw, err := os.ReadFile(filepath.Join(quarantine, "2024-06-01.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{broken` {
		t.Fatalf("quarantined bytes = %q", raw)
	}
	report, err := os.ReadFile(filepath.Join(quarantine, "2024-06-01_errors.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(report), "1. Invalid JSON: ") {
		t.Fatalf("report missing parse error:\n%s", report)
	}
}

// failSource fails fetches for one filename and delegates the rest.
type failSource struct {
	inner    Source
	failName string
}

func (f failSource) Content(ctx context.Context, file fetch.File) ([]byte, error) {
	if file.Name == f.failName {
		return nil, fmt.Errorf("HTTP 500 from upstream")
	}
	return f.inner.Content(ctx, file)
}

func TestProcessFilesFetchFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "2024-06-01.json", validSnapshotJSON)
	writeSnapshotFile(t, dir, "2024-06-02.json", validSnapshotJSON)
	writeSnapshotFile(t, dir, "2024-06-03.json", validSnapshotJSON)

	local := fetch.DirSource{Dir: dir}
	files, err := local.List()
	if err != nil {
		t.Fatal(err)
	}

	quarantine := filepath.Join(t.TempDir(), "quarantine")
	var out bytes.Buffer
	result := ProcessFiles(context.Background(), files,
		failSource{inner: local, failName: "2024-06-02.json"},
		types.PipelineConfig{QuarantineDir: quarantine}, &out)

	if result.Processed != 3 || result.Passed != 2 || result.Failed != 1 {
		t.Fatalf("summary = %d/%d/%d, want 3/2/1",
			result.Processed, result.Passed, result.Failed)
	}
	if !strings.Contains(out.String(), "failed:      2024-06-02.json") {
		t.Fatalf("fetch failure status missing:\n%s", out.String())
	}

	// Nothing to quarantine for a fetch failure: no bytes arrived.
	if _, err := os.Stat(quarantine); !os.IsNotExist(err) {
		t.Fatalf("quarantine dir created for fetch failure (err=%v)", err)
	}

	for _, o := range result.Outcomes {
		if o.Filename == "2024-06-02.json" && o.Verdict != types.VerdictFetchFailed {
			t.Fatalf("verdict for failed fetch = %v", o.Verdict)
		}
	}
}

func TestProcessFilesWritesSummary(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "2024-07-01.json", validSnapshotJSON)

	src := fetch.DirSource{Dir: dir}
	files, err := src.List()
	if err != nil {
		t.Fatal(err)
	}

	summaryPath := filepath.Join(t.TempDir(), "last_run.yaml")
	var out bytes.Buffer
	ProcessFiles(context.Background(), files, src, types.PipelineConfig{
		QuarantineDir: filepath.Join(t.TempDir(), "quarantine"),
		SummaryPath:   summaryPath,
	}, &out)

	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var summary Result
	if err := yaml.Unmarshal(data, &summary); err != nil {
		t.Fatalf("parsing summary: %v", err)
	}
	if summary.Processed != 1 || summary.Passed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Outcomes) != 1 || summary.Outcomes[0].Verdict != types.VerdictAccepted {
		t.Fatalf("outcomes = %+v", summary.Outcomes)
	}
}

func TestProcessFileSingle(t *testing.T) {
	quarantine := filepath.Join(t.TempDir(), "quarantine")
	cfg := types.PipelineConfig{QuarantineDir: quarantine}

	verdict, result, err := ProcessFile("2024-08-01.json", []byte(validSnapshotJSON), cfg)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if verdict != types.VerdictAccepted || !result.IsValid {
		t.Fatalf("verdict = %v, result = %+v", verdict, result)
	}

	verdict, result, err = ProcessFile("2024-08-02.json", []byte(missingAreasUA), cfg)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if verdict != types.VerdictQuarantined || result.IsValid {
		t.Fatalf("verdict = %v, result = %+v", verdict, result)
	}
}
