// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pdiddy/conflict-monitor/pkg/types"
)

func warningsWithCode(warnings []types.Warning, code string) []types.Warning {
	var out []types.Warning
	for _, w := range warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

func TestBusinessRulesCleanDoc(t *testing.T) {
	if ws := BusinessRules(validDoc(), types.ValidationConfig{}); len(ws) != 0 {
		t.Fatalf("clean doc produced warnings: %v", ws)
	}
}

func TestCoordinateRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		want   string
	}{
		{
			name: "longitude too large in areas",
			mutate: func(doc map[string]any) {
				doc["areas"] = []any{[]any{pair(36.2, 49.9), pair(181.0, 49.9)}}
			},
			want: "Invalid coordinate at areas[0][1]: [181, 49.9]",
		},
		{
			name: "latitude too small in areas_ua",
			mutate: func(doc map[string]any) {
				doc["areas_ua"] = []any{[]any{pair(30.5, -90.5)}}
			},
			want: "Invalid coordinate at areas_ua[0][0]: [30.5, -90.5]",
		},
		{
			name: "longitude too small in frontline",
			mutate: func(doc map[string]any) {
				doc["frontline"] = []any{[]any{pair(37.5, 47.1)}, []any{pair(-180.2, 47.1)}}
			},
			want: "Invalid coordinate at frontline[1][0]: [-180.2, 47.1]",
		},
		{
			name: "incident coordinate out of range",
			mutate: func(doc map[string]any) {
				doc["geos"] = map[string]any{
					"ru": []any{map[string]any{"c": pair(200.5, 48.2)}},
					"ua": []any{},
				}
			},
			want: "Invalid coordinate at geos.ru[0]: [200.5, 48.2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)

			got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeInvalidCoordinate)
			if len(got) != 1 {
				t.Fatalf("got %d coordinate warnings (%v), want 1", len(got), got)
			}
			if got[0].Message != tt.want {
				t.Fatalf("message = %q, want %q", got[0].Message, tt.want)
			}
		})
	}
}

func TestCoordinateRangeOneWarningPerPair(t *testing.T) {
	doc := validDoc()
	doc["areas"] = []any{[]any{pair(181.0, 0), pair(0, 91.0), pair(10.0, 10.0)}}
	doc["geos"] = map[string]any{
		"ru": []any{},
		"ua": []any{
			map[string]any{"c": pair(-181.0, 0)},
			map[string]any{"c": pair(20.0, 20.0)},
		},
	}

	got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeInvalidCoordinate)
	if len(got) != 3 {
		t.Fatalf("got %d coordinate warnings (%v), want 3", len(got), got)
	}
}

func TestCoordinateRangeSkipsMalformedPairs(t *testing.T) {
	doc := validDoc()
	doc["areas"] = []any{[]any{"not-a-pair", []any{36.2}, []any{"x", "y"}}}
	doc["geos"] = map[string]any{
		"ru": []any{map[string]any{"t": "no coordinate field"}},
		"ua": []any{},
	}

	got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeInvalidCoordinate)
	if len(got) != 0 {
		t.Fatalf("malformed pairs produced warnings: %v", got)
	}
}

func TestUnitCountMismatch(t *testing.T) {
	doc := validDoc()

	units := make([]any, 866)
	for i := range units {
		units[i] = []any{fmt.Sprintf("RU-%03d", i), 36.2, 49.9}
	}
	doc["unit_count"] = map[string]any{"ru": float64(867), "ua": float64(2)}
	doc["units"] = map[string]any{
		"ru": units,
		"ua": []any{[]any{"UA-001", 30.5, 50.4}, []any{"UA-002", 30.6, 50.5}},
	}

	got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeCountMismatch)
	if len(got) != 1 {
		t.Fatalf("got %d count warnings (%v), want 1", len(got), got)
	}
	want := "Unit count mismatch for ru: expected 867, found 866"
	if got[0].Message != want {
		t.Fatalf("message = %q, want %q", got[0].Message, want)
	}
}

func TestUnitCountMatchNoWarning(t *testing.T) {
	got := warningsWithCode(BusinessRules(validDoc(), types.ValidationConfig{}), types.CodeCountMismatch)
	if len(got) != 0 {
		t.Fatalf("matching counts produced warnings: %v", got)
	}
}

func TestDuplicateUnitIDs(t *testing.T) {
	doc := validDoc()
	doc["unit_count"] = map[string]any{"ru": float64(1), "ua": float64(3)}
	doc["units"] = map[string]any{
		"ru": []any{[]any{"RU-001", 36.2, 49.9}},
		"ua": []any{
			[]any{"UA-042", 30.5, 50.4},
			[]any{"UA-007", 30.6, 50.5},
			[]any{"UA-042", 30.7, 50.6},
		},
	}

	// First occurrence stays clean: one repeat, one warning.
	got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeDuplicateUnitID)
	if len(got) != 1 {
		t.Fatalf("got %d duplicate warnings (%v), want 1", len(got), got)
	}
	want := `Duplicate unit id "UA-042" for side ua`
	if got[0].Message != want {
		t.Fatalf("message = %q, want %q", got[0].Message, want)
	}
}

func TestDuplicateUnitIDsTripleOccurrence(t *testing.T) {
	doc := validDoc()
	doc["unit_count"] = map[string]any{"ru": float64(3), "ua": float64(2)}
	doc["units"] = map[string]any{
		"ru": []any{
			[]any{"RU-001", 36.2, 49.9},
			[]any{"RU-001", 36.3, 49.8},
			[]any{"RU-001", 36.4, 49.7},
		},
		"ua": []any{[]any{"UA-001", 30.5, 50.4}, []any{"UA-002", 30.6, 50.5}},
	}

	got := warningsWithCode(BusinessRules(doc, types.ValidationConfig{}), types.CodeDuplicateUnitID)
	if len(got) != 2 {
		t.Fatalf("got %d duplicate warnings (%v), want 2 (first occurrence unflagged)", len(got), got)
	}
}

func TestDuplicateUnitIDsFlagAll(t *testing.T) {
	doc := validDoc()
	doc["unit_count"] = map[string]any{"ru": float64(1), "ua": float64(2)}
	doc["units"] = map[string]any{
		"ru": []any{[]any{"RU-001", 36.2, 49.9}},
		"ua": []any{[]any{"UA-042", 30.5, 50.4}, []any{"UA-042", 30.6, 50.5}},
	}

	cfg := types.ValidationConfig{FlagAllDuplicates: true}
	got := warningsWithCode(BusinessRules(doc, cfg), types.CodeDuplicateUnitID)
	if len(got) != 2 {
		t.Fatalf("got %d duplicate warnings (%v), want 2 with FlagAllDuplicates", len(got), got)
	}
}

func TestRulesAreIndependent(t *testing.T) {
	doc := validDoc()
	doc["areas"] = []any{[]any{pair(181.0, 0)}}
	doc["unit_count"] = map[string]any{"ru": float64(5), "ua": float64(2)}

	warnings := BusinessRules(doc, types.ValidationConfig{})
	if n := len(warningsWithCode(warnings, types.CodeInvalidCoordinate)); n != 1 {
		t.Errorf("coordinate warnings = %d, want 1", n)
	}
	if n := len(warningsWithCode(warnings, types.CodeCountMismatch)); n != 1 {
		t.Errorf("count warnings = %d, want 1", n)
	}
}

func TestBusinessRulesIdempotent(t *testing.T) {
	doc := validDoc()
	doc["areas"] = []any{[]any{pair(200.0, 95.0)}}
	doc["unit_count"] = map[string]any{"ru": float64(9), "ua": float64(2)}

	first := BusinessRules(doc, types.ValidationConfig{})
	second := BusinessRules(doc, types.ValidationConfig{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestBusinessRulesDoNotMutate(t *testing.T) {
	doc := validDoc()
	doc["areas"] = []any{[]any{pair(181.0, 0)}}

	before := fmt.Sprintf("%#v", doc)
	BusinessRules(doc, types.ValidationConfig{})
	after := fmt.Sprintf("%#v", doc)
	if before != after {
		t.Fatal("document mutated by business rules")
	}
}
