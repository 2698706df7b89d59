// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"math"
)

// requiredFields lists the top-level fields every snapshot must carry, in
// check order. The order fixes error-message ordering for reproducibility;
// checks never short-circuit.
var requiredFields = []string{"areas", "areas_ua", "frontline", "geos", "unit_count", "units"}

// arrayFields are the top-level fields that must be JSON arrays.
var arrayFields = []string{"areas", "areas_ua", "frontline"}

// sides are the two per-side keys inside geos, unit_count, and units.
var sides = []string{"ru", "ua"}

// Structure checks presence and shape of the required top-level fields and
// returns every violation found. It is pure: the document is never modified.
// An empty result means the snapshot is structurally valid.
func Structure(doc map[string]any) []string {
	var errs []string

	for _, field := range requiredFields {
		if _, ok := doc[field]; !ok {
			errs = append(errs, "Missing required field: "+field)
		}
	}

	for _, field := range arrayFields {
		v, ok := doc[field]
		if !ok {
			continue
		}
		if _, ok := v.([]any); !ok {
			errs = append(errs, field+" must be an array")
		}
	}

	errs = append(errs, checkSides(doc, "geos", checkArray)...)
	errs = append(errs, checkSides(doc, "unit_count", checkCount)...)
	errs = append(errs, checkSides(doc, "units", checkArray)...)

	return errs
}

// checkSides verifies that field is an object with both side keys, applying
// check to each side value that is present.
func checkSides(doc map[string]any, field string, check func(field, side string, v any) []string) []string {
	raw, ok := doc[field]
	if !ok {
		return nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("'%s' must be an object", field)}
	}

	var errs []string
	for _, side := range sides {
		v, ok := obj[side]
		if !ok {
			errs = append(errs, fmt.Sprintf("'%s' must have '%s' field", field, side))
			continue
		}
		errs = append(errs, check(field, side, v)...)
	}
	return errs
}

func checkArray(field, side string, v any) []string {
	if _, ok := v.([]any); !ok {
		return []string{fmt.Sprintf("%s.%s must be an array", field, side)}
	}
	return nil
}

// checkCount accepts whole, non-negative JSON numbers. encoding/json parses
// numbers as float64, so integrality is a trunc check.
func checkCount(field, side string, v any) []string {
	n, ok := v.(float64)
	if !ok || n != math.Trunc(n) {
		return []string{fmt.Sprintf("%s.%s must be an integer", field, side)}
	}
	if n < 0 {
		return []string{fmt.Sprintf("%s.%s must be a non-negative integer", field, side)}
	}
	return nil
}
