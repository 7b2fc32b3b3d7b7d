package domain

import "time"

// EvaluationContext is the flat, read-only view of one candidate's
// situation, assembled exactly once per evaluation by the context builder.
// Every derived field (temporal facts, uber case, exam-date case,
// can-modify flag) is computed at build time and never recomputed, so all
// matchers and the alert collector observe the same snapshot.
type EvaluationContext struct {
	// Raw inputs.
	Deal    DealRecord
	Portal  PortalRecord
	Triage  TriageResult
	Linking LinkingResult
	Threads []ThreadMessage

	// Today is the evaluation date, injected by the caller for determinism.
	Today time.Time

	// Derived temporal facts.
	DateExamen      Date
	DateCloture     Date
	DaysUntilExam   int
	DaysUntilKnown  bool
	CloturePassed   bool
	DateExamenPassed bool
	DateExamenFuture bool

	// Derived classification facts.
	UberCase          UberCase
	ExamCase          ExamDateCase
	CanModifyExamDate bool

	// Intent facts.
	PrimaryIntent    string
	SecondaryIntents []string
	ForceMajeure     bool
}

// HasIntent reports whether the given intent is the primary intent or one
// of the secondary intents.
func (c *EvaluationContext) HasIntent(intent string) bool {
	if intent == "" {
		return false
	}
	if c.PrimaryIntent == intent {
		return true
	}
	for _, s := range c.SecondaryIntents {
		if s == intent {
			return true
		}
	}
	return false
}

// SanctionedDates returns the dates already attached to this candidate
// (assigned exam date, registration closing date). The response validator
// accepts these in addition to the proposed dates.
func (c *EvaluationContext) SanctionedDates() []Date {
	var out []Date
	if c.DateExamen.Known {
		out = append(out, c.DateExamen)
	}
	if c.DateCloture.Known {
		out = append(out, c.DateCloture)
	}
	return out
}
