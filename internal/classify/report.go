// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/conflict-monitor/pkg/types"
)

const (
	reportBanner = "VALIDATION FAILURE REPORT"
	heavyRule    = "================================================================================"
	lightRule    = "--------------------------------------------------------------------------------"
)

// ReportName returns the error-report filename for a quarantined snapshot:
// the dot-extension is replaced by an _errors.txt suffix
// ("2024-05-01.json" -> "2024-05-01_errors.txt").
func ReportName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + "_errors.txt"
}

// RenderReport formats a ValidationResult as the human-readable report
// written next to a quarantined snapshot. Sections with zero entries are
// omitted entirely. The layout is load-bearing: downstream tooling parses
// these files, so changes here break compatibility.
func RenderReport(filename string, result types.ValidationResult) string {
	var b strings.Builder

	b.WriteString(reportBanner + "\n")
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "Filename: %s\n", filename)

	if len(result.Errors) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "ERRORS (%d):\n", len(result.Errors))
		b.WriteString(lightRule + "\n")
		for i, e := range result.Errors {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e)
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "WARNINGS (%d):\n", len(result.Warnings))
		b.WriteString(lightRule + "\n")
		for i, w := range result.Warnings {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, w.Code, w.Message)
		}
	}

	b.WriteString("\n" + heavyRule + "\n")
	return b.String()
}
