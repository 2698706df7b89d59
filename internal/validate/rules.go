// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strconv"

	"github.com/pdiddy/conflict-monitor/pkg/types"
)

// Severity classifies a rule's findings. Warnings are advisory; errors fail
// the snapshot like a structural violation would.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Rule is one business rule: a warning code, its severity, and an evaluator
// returning one message per violation. Rules assume structural validity and
// are independent of each other.
type Rule struct {
	Code     string
	Severity Severity
	Eval     func(doc map[string]any, cfg types.ValidationConfig) []string
}

// Rules lists the business rules in evaluation order. New rules are added
// here; classification picks them up without further wiring.
var Rules = []Rule{
	{Code: types.CodeInvalidCoordinate, Severity: SeverityWarning, Eval: checkCoordinates},
	{Code: types.CodeCountMismatch, Severity: SeverityWarning, Eval: checkUnitCounts},
	{Code: types.CodeDuplicateUnitID, Severity: SeverityWarning, Eval: checkDuplicateUnitIDs},
}

// BusinessRules evaluates every rule on a structurally valid snapshot and
// returns the accumulated warnings. Running it twice on the same document
// yields the same sequence.
func BusinessRules(doc map[string]any, cfg types.ValidationConfig) []types.Warning {
	var warnings []types.Warning
	for _, r := range Rules {
		for _, msg := range r.Eval(doc, cfg) {
			warnings = append(warnings, types.Warning{Code: r.Code, Message: msg})
		}
	}
	return warnings
}

// checkCoordinates walks every [lon, lat] pair reachable from areas,
// areas_ua, frontline, and each incident's c field and flags pairs outside
// the valid longitude/latitude ranges. Pairs that are not two numbers are
// skipped; the structural checks do not descend this far, and flagging
// shape noise as range violations would be misleading.
func checkCoordinates(doc map[string]any, _ types.ValidationConfig) []string {
	var msgs []string

	for _, field := range []string{"areas", "areas_ua", "frontline"} {
		polygons, _ := doc[field].([]any)
		for i, p := range polygons {
			pairs, _ := p.([]any)
			for j, pair := range pairs {
				msgs = appendPairCheck(msgs, pair, fmt.Sprintf("%s[%d][%d]", field, i, j))
			}
		}
	}

	geos, _ := doc["geos"].(map[string]any)
	for _, side := range sides {
		incidents, _ := geos[side].([]any)
		for i, inc := range incidents {
			rec, _ := inc.(map[string]any)
			c, ok := rec["c"]
			if !ok {
				continue
			}
			msgs = appendPairCheck(msgs, c, fmt.Sprintf("geos.%s[%d]", side, i))
		}
	}

	return msgs
}

func appendPairCheck(msgs []string, pair any, path string) []string {
	lon, lat, ok := coordPair(pair)
	if !ok {
		return msgs
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		msgs = append(msgs, fmt.Sprintf("Invalid coordinate at %s: [%s, %s]",
			path, formatCoord(lon), formatCoord(lat)))
	}
	return msgs
}

func coordPair(v any) (lon, lat float64, ok bool) {
	pair, isSeq := v.([]any)
	if !isSeq || len(pair) < 2 {
		return 0, 0, false
	}
	lon, lonOK := pair[0].(float64)
	lat, latOK := pair[1].(float64)
	return lon, lat, lonOK && latOK
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// checkUnitCounts compares each side's declared unit_count against the
// actual length of its units sequence.
func checkUnitCounts(doc map[string]any, _ types.ValidationConfig) []string {
	counts, _ := doc["unit_count"].(map[string]any)
	units, _ := doc["units"].(map[string]any)

	var msgs []string
	for _, side := range sides {
		want, ok := counts[side].(float64)
		if !ok {
			continue
		}
		list, _ := units[side].([]any)
		if int(want) != len(list) {
			msgs = append(msgs, fmt.Sprintf("Unit count mismatch for %s: expected %d, found %d",
				side, int(want), len(list)))
		}
	}
	return msgs
}

// checkDuplicateUnitIDs flags repeated unit identifiers within each side.
// By default only the second and later occurrences are flagged; with
// FlagAllDuplicates set, every occurrence of a repeated id is flagged.
func checkDuplicateUnitIDs(doc map[string]any, cfg types.ValidationConfig) []string {
	units, _ := doc["units"].(map[string]any)

	var msgs []string
	for _, side := range sides {
		list, _ := units[side].([]any)

		occurrences := make(map[string]int)
		var ids []string // unit ids in record order, "" for malformed records
		for _, rec := range list {
			fields, ok := rec.([]any)
			if !ok || len(fields) == 0 {
				ids = append(ids, "")
				continue
			}
			id := fmt.Sprintf("%v", fields[0])
			occurrences[id]++
			ids = append(ids, id)
		}

		seen := make(map[string]bool)
		for _, id := range ids {
			if id == "" {
				continue
			}
			repeat := seen[id]
			seen[id] = true
			if repeat || (cfg.FlagAllDuplicates && occurrences[id] > 1) {
				msgs = append(msgs, fmt.Sprintf("Duplicate unit id %q for side %s", id, side))
			}
		}
	}
	return msgs
}
