// Package detector evaluates a candidate's situation against the state
// catalog. It contains the context builder, the state detector and the
// alert collector; all three are pure functions over their inputs plus the
// read-only catalog.
package detector

import (
	"time"

	"examdesk_backend/internal/stateengine/domain"
)

// Inputs groups everything one evaluation needs. Today is injectable for
// deterministic tests; when zero, the current date is used.
type Inputs struct {
	Deal    domain.DealRecord
	Portal  domain.PortalRecord
	Triage  domain.TriageResult
	Linking domain.LinkingResult
	Threads []domain.ThreadMessage
	Today   time.Time
}

// BuildContext assembles the evaluation context. Every derived field is
// computed exactly once here; detection and alert collection only read the
// snapshot, so there is no window for the derived facts to drift apart
// mid-evaluation. Unparseable dates degrade to "unknown" and leave the
// corresponding temporal predicates false.
func BuildContext(in Inputs) *domain.EvaluationContext {
	today := in.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = domain.Truncate(today)

	ctx := &domain.EvaluationContext{
		Deal:    in.Deal,
		Portal:  in.Portal,
		Triage:  in.Triage,
		Linking: in.Linking,
		Threads: in.Threads,
		Today:   today,

		PrimaryIntent:    in.Triage.PrimaryIntent,
		SecondaryIntents: in.Triage.SecondaryIntents,
		ForceMajeure:     in.Triage.IntentContext.ForceMajeure,
	}

	ctx.DateExamen = domain.ParseDate(in.Deal.ExamDate.Date)
	ctx.DateCloture = domain.ParseDate(in.Deal.ExamDate.ClotureDate)

	if days, ok := ctx.DateExamen.DaysUntil(today); ok {
		ctx.DaysUntilExam = days
		ctx.DaysUntilKnown = true
		ctx.DateExamenPassed = days < 0
		ctx.DateExamenFuture = days >= 0
	}
	if ctx.DateCloture.Known {
		ctx.CloturePassed = ctx.DateCloture.Time.Before(today)
	}

	ctx.UberCase = domain.DetermineUberCase(in.Deal, in.Portal, today)
	ctx.ExamCase = domain.DetermineExamDateCase(
		in.Deal.Evalbox,
		ctx.DateExamen,
		ctx.DateExamenPassed,
		ctx.DateExamenFuture,
		ctx.CloturePassed,
		in.Deal.DatesProposed,
		ctx.ForceMajeure,
	)
	ctx.CanModifyExamDate = domain.CanModifyExamDate(in.Deal.Evalbox, ctx.CloturePassed)

	return ctx
}
