package chat

import (
	"strings"
	"testing"
)

func TestSystemPromptKnownDepartments(t *testing.T) {
	for _, dep := range []string{DepartmentHR, DepartmentFinance, DepartmentIT, DepartmentOperations} {
		if p := SystemPrompt(dep); p == genericSystemPrompt {
			t.Errorf("department %s should have its own prompt", dep)
		}
	}
}

func TestSystemPromptFallback(t *testing.T) {
	for _, dep := range []string{"Legal", "", "hr", "HR "} {
		if p := SystemPrompt(dep); p != genericSystemPrompt {
			t.Errorf("department %q should fall back to the generic prompt, got %q", dep, p)
		}
	}
}

func TestCannedSources(t *testing.T) {
	hr := CannedSources(DepartmentHR)
	if len(hr) != 2 {
		t.Fatalf("expected 2 HR sources, got %d", len(hr))
	}

	// Unknown departments get an empty list, not the General entries.
	if got := CannedSources("Legal"); len(got) != 0 {
		t.Errorf("unknown department should have no sources, got %v", got)
	}

	// Callers must not be able to mutate the fixed table.
	hr[0].Title = "mutated"
	if CannedSources(DepartmentHR)[0].Title == "mutated" {
		t.Error("CannedSources should return a copy")
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
		{strings.Repeat("x", 401), 101},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tc.text), got, tc.want)
		}
	}
}
