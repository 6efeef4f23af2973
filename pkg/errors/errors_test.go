package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestEngineErrorMessage(t *testing.T) {
	err := New(CategoryValidation, "bad field")
	if err.Error() != "bad field" {
		t.Errorf("Error() = %q", err.Error())
	}

	err.WithSuggestion("fix it")
	if !strings.Contains(err.Error(), "suggestion: fix it") {
		t.Errorf("Error() missing suggestion: %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryLookup, "x") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CategoryLookup, "lookup failed")

	if err.Unwrap() != cause {
		t.Error("Unwrap must return the cause")
	}
	if err.Category != CategoryLookup {
		t.Errorf("Category = %s", err.Category)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryAmbiguous, 5},
		{CategoryLookup, 6},
		{CategoryInternal, 1},
	}

	for _, tt := range tests {
		err := New(tt.category, "x")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}

	if GetExitCode(fmt.Errorf("plain")) != 1 {
		t.Error("plain errors map to exit code 1")
	}
}

func TestCategoryInspection(t *testing.T) {
	err := NewLookupError("transactions", fmt.Errorf("timeout"))

	if !IsCategory(err, CategoryLookup) {
		t.Error("expected lookup category")
	}
	if IsCategory(err, CategoryFile) {
		t.Error("unexpected file category")
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Error("plain errors default to internal")
	}

	// Category survives fmt wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	if GetCategory(wrapped) != CategoryLookup {
		t.Error("category must survive error wrapping")
	}
}

func TestConstructorsCarryContext(t *testing.T) {
	parseErr := NewParseError("payables.csv", 7, "amount", fmt.Errorf("bad decimal"))
	if parseErr.Context["line"] != 7 {
		t.Errorf("line context = %v", parseErr.Context["line"])
	}
	if parseErr.Category != CategoryParse {
		t.Errorf("Category = %s", parseErr.Category)
	}

	ambiguous := NewAmbiguousError("two candidates").
		WithContext("item_id", "IT1")
	if ambiguous.Context["item_id"] != "IT1" {
		t.Error("context not attached")
	}

	detailed := ambiguous.FormatDetailed()
	if !strings.Contains(detailed, "[ambiguous]") || !strings.Contains(detailed, "item_id") {
		t.Errorf("FormatDetailed output incomplete: %q", detailed)
	}
}
