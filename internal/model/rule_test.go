package model

import "testing"

func TestCanonicalOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{"equals", OpEquals},
		{"Equals", OpEquals},
		{"EQUALS", OpEquals},
		{"not equals", OpNotEquals},
		{"Not Equals", OpNotEquals},
		{"not_equals", OpNotEquals},
		{"Greater Than", OpGreaterThan},
		{"greater_than", OpGreaterThan},
		{"  less   than  ", OpLessThan},
		{"IS_NOT_EMPTY", OpIsNotEmpty},
		{"Is Empty", OpIsEmpty},
		{"starts with", OpStartsWith},
		{"Ends_With", OpEndsWith},
		{"contains", OpContains},
		{"Does Not Contain", OpDoesNotContain},
	}
	for _, tt := range tests {
		if got := CanonicalOperator(tt.in); got != tt.want {
			t.Errorf("CanonicalOperator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalAction(t *testing.T) {
	tests := []struct {
		in   string
		want RuleAction
	}{
		{"show", ActionShow},
		{"Show", ActionShow},
		{"HIDE", ActionHide},
		{"jump to", ActionJumpTo},
		{"Jump_To", ActionJumpTo},
		{"skip next", ActionSkipNext},
		{"Skip To End", ActionSkipToEnd},
	}
	for _, tt := range tests {
		if got := CanonicalAction(tt.in); got != tt.want {
			t.Errorf("CanonicalAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionIsVisibility(t *testing.T) {
	if !ActionShow.IsVisibility() || !ActionHide.IsVisibility() {
		t.Fatalf("show/hide not visibility actions")
	}
	if ActionJumpTo.IsVisibility() || ActionSkipToEnd.IsVisibility() {
		t.Fatalf("navigation action reported as visibility")
	}
}
