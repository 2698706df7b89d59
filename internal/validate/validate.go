// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks conflict-map snapshots against the required
// document shape and the domain business rules. Structural violations are
// hard errors; business-rule findings are warnings unless a rule or the
// configuration says otherwise. Validators never fail on malformed input:
// they accumulate findings and return them.
package validate

import (
	"slices"

	"github.com/pdiddy/conflict-monitor/pkg/types"
)

// Document runs the structural checks and, only when they all pass, the
// business rules. Business rules are skipped for structurally invalid
// snapshots so malformed shapes do not cascade into the rule walkers.
func Document(doc map[string]any, cfg types.ValidationConfig) types.ValidationResult {
	if errs := Structure(doc); len(errs) > 0 {
		return types.ValidationResult{IsValid: false, Errors: errs}
	}

	warnings := BusinessRules(doc, cfg)
	return types.ValidationResult{
		IsValid:  !anyFatal(warnings, cfg),
		Warnings: warnings,
	}
}

// anyFatal reports whether a warning belongs to a category the policy treats
// as fatal, either by rule severity or by configuration.
func anyFatal(warnings []types.Warning, cfg types.ValidationConfig) bool {
	fatal := make(map[string]bool)
	for _, r := range Rules {
		if r.Severity == SeverityError {
			fatal[r.Code] = true
		}
	}
	for _, w := range warnings {
		if fatal[w.Code] || slices.Contains(cfg.FatalCodes, w.Code) {
			return true
		}
	}
	return false
}
