package domain

import "testing"

func TestDetermineExamDateCase(t *testing.T) {
	future := ParseDate("2025-06-01")

	tests := []struct {
		name string
		in   examCaseInput
		want ExamDateCase
	}{
		{"nothing yet", examCaseInput{}, CasAwaitingProposal},
		{"dates proposed", examCaseInput{DatesProposed: true}, CasChoicePending},
		{"refused", examCaseInput{Evalbox: EvalboxRefuseCMA}, CasRefused},
		{"scheduled, window open", examCaseInput{ExamDate: future, ExamFuture: true}, CasScheduledOpen},
		{"scheduled, window closed", examCaseInput{ExamDate: future, ExamFuture: true, CloturePassed: true}, CasScheduledLocked},
		{"deadline missed", examCaseInput{CloturePassed: true}, CasDeadlineMissed},
		{"awaiting results", examCaseInput{ExamDate: future, ExamPassed: true}, CasAwaitingResults},
		{"results available", examCaseInput{Evalbox: EvalboxResultatsDispo, ExamDate: future, ExamPassed: true}, CasResultsAvailable},
		{"convocation received", examCaseInput{Evalbox: EvalboxConvocRecue, ExamDate: future, ExamFuture: true}, CasConvocationReceived},
		{"force majeure", examCaseInput{ExamDate: future, ExamFuture: true, ForceMajeure: true}, CasForceMajeure},

		// Precedence: refusal and convocation outrank the scheduling cases
		// even when 4/5/6 preconditions hold.
		{"refused beats scheduled open", examCaseInput{Evalbox: EvalboxRefuseCMA, ExamDate: future, ExamFuture: true}, CasRefused},
		{"refused beats deadline missed", examCaseInput{Evalbox: EvalboxRefuseCMA, CloturePassed: true}, CasRefused},
		{"convocation beats scheduled locked", examCaseInput{Evalbox: EvalboxConvocRecue, ExamDate: future, ExamFuture: true, CloturePassed: true}, CasConvocationReceived},
		{"convocation beats deadline missed", examCaseInput{Evalbox: EvalboxConvocRecue, CloturePassed: true}, CasConvocationReceived},
		{"force majeure beats scheduled locked", examCaseInput{ExamDate: future, ExamFuture: true, CloturePassed: true, ForceMajeure: true}, CasForceMajeure},
		{"force majeure without a date falls through", examCaseInput{ForceMajeure: true, CloturePassed: true}, CasDeadlineMissed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := determineExamDateCase(tc.in)
			if got != tc.want {
				t.Errorf("determineExamDateCase(%+v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

// TestDetermineExamDateCaseTotality checks the decision tree returns a case
// in [1,10] for every combination of its inputs.
func TestDetermineExamDateCaseTotality(t *testing.T) {
	statuses := []string{"", EvalboxDossierRecu, EvalboxRefuseCMA, EvalboxValideCMA, EvalboxConvocRecue, EvalboxResultatsDispo}
	dates := []Date{{}, ParseDate("2025-06-01")}
	bools := []bool{false, true}

	for _, evalbox := range statuses {
		for _, date := range dates {
			for _, passed := range bools {
				for _, futureFlag := range bools {
					for _, cloture := range bools {
						for _, proposed := range bools {
							for _, fm := range bools {
								got := determineExamDateCase(examCaseInput{
									Evalbox:       evalbox,
									ExamDate:      date,
									ExamPassed:    passed,
									ExamFuture:    futureFlag,
									CloturePassed: cloture,
									DatesProposed: proposed,
									ForceMajeure:  fm,
								})
								if got < CasAwaitingProposal || got > CasForceMajeure {
									t.Fatalf("case %d out of range for evalbox=%q", got, evalbox)
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestCanModifyExamDate(t *testing.T) {
	tests := []struct {
		evalbox       string
		cloturePassed bool
		want          bool
	}{
		{EvalboxValideCMA, true, false},
		{EvalboxConvocRecue, true, false},
		{EvalboxValideCMA, false, true},
		{EvalboxDossierRecu, true, true},
		{"", false, true},
	}
	for _, tc := range tests {
		if got := CanModifyExamDate(tc.evalbox, tc.cloturePassed); got != tc.want {
			t.Errorf("CanModifyExamDate(%q, %v) = %v, want %v", tc.evalbox, tc.cloturePassed, got, tc.want)
		}
	}
}
