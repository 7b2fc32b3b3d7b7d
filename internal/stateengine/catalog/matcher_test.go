package catalog

import (
	"testing"

	"examdesk_backend/internal/stateengine/domain"
)

func TestFieldEqualsMatcher(t *testing.T) {
	ctx := &domain.EvaluationContext{
		Deal:          domain.DealRecord{Evalbox: domain.EvalboxConvocRecue},
		CloturePassed: true,
	}

	tests := []struct {
		field string
		want  string
		match bool
	}{
		{"evalbox", domain.EvalboxConvocRecue, true},
		{"evalbox", domain.EvalboxValideCMA, false},
		{"cloture_passed", "true", true},
		{"cloture_passed", "false", false},
		// Absent field degrades to non-matching.
		{"primary_intent", "demande_report", false},
	}

	for _, tc := range tests {
		m := fieldEqualsMatcher{get: contextFields[tc.field], want: tc.want}
		if got := m.Match(ctx); got != tc.match {
			t.Errorf("field %s == %q: got %v, want %v", tc.field, tc.want, got, tc.match)
		}
	}
}

func TestAllOfMatcher(t *testing.T) {
	ctx := &domain.EvaluationContext{
		Deal:          domain.DealRecord{UberOffer: true},
		CloturePassed: true,
	}

	both := allOfMatcher{subs: []Matcher{
		fieldEqualsMatcher{get: contextFields["uber_offer"], want: "true"},
		fieldEqualsMatcher{get: contextFields["cloture_passed"], want: "true"},
	}}
	if !both.Match(ctx) {
		t.Error("conjunction of true predicates must match")
	}

	oneFalse := allOfMatcher{subs: []Matcher{
		fieldEqualsMatcher{get: contextFields["uber_offer"], want: "true"},
		fieldEqualsMatcher{get: contextFields["cloture_passed"], want: "false"},
	}}
	if oneFalse.Match(ctx) {
		t.Error("conjunction with a false predicate must not match")
	}

	if (allOfMatcher{}).Match(ctx) {
		t.Error("empty conjunction must not match")
	}
}

func TestCaseInMatcher(t *testing.T) {
	ctx := &domain.EvaluationContext{UberCase: domain.UberCaseD, ExamCase: domain.CasScheduledLocked}

	uber := caseInMatcher{get: contextFields["uber_case"], want: map[string]bool{"D": true, "E": true}}
	if !uber.Match(ctx) {
		t.Error("uber case D must match {D,E}")
	}

	exam := caseInMatcher{get: contextFields["exam_case"], want: map[string]bool{"4": true, "5": true}}
	if !exam.Match(ctx) {
		t.Error("exam case 5 must match {4,5}")
	}

	miss := caseInMatcher{get: contextFields["uber_case"], want: map[string]bool{"A": true}}
	if miss.Match(ctx) {
		t.Error("uber case D must not match {A}")
	}
}

func TestIntentMatcher(t *testing.T) {
	ctx := &domain.EvaluationContext{
		PrimaryIntent:    "demande_report",
		SecondaryIntents: []string{"demande_identifiants"},
	}

	if !(intentMatcher{intent: "demande_report"}).Match(ctx) {
		t.Error("primary intent must match")
	}
	if (intentMatcher{intent: "demande_identifiants"}).Match(ctx) {
		t.Error("secondary intent must not match without include_secondary")
	}
	if !(intentMatcher{intent: "demande_identifiants", includeSecondary: true}).Match(ctx) {
		t.Error("secondary intent must match with include_secondary")
	}
	if (intentMatcher{}).Match(ctx) {
		t.Error("empty intent must never match")
	}
}

func TestFallbackAndNever(t *testing.T) {
	ctx := &domain.EvaluationContext{}
	if !(fallbackMatcher{}).Match(ctx) {
		t.Error("fallback must always match")
	}
	if (neverMatcher{}).Match(ctx) {
		t.Error("never must never match")
	}
}
