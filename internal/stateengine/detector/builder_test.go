package detector

import (
	"testing"
	"time"

	"examdesk_backend/internal/stateengine/domain"
)

var testToday = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func TestBuildContextTemporalFacts(t *testing.T) {
	in := Inputs{
		Deal: domain.DealRecord{
			Evalbox: domain.EvalboxValideCMA,
			ExamDate: domain.DateLookup{
				Date:        "2025-04-01",
				ClotureDate: "2025-03-01",
			},
		},
		Today: testToday,
	}

	ctx := BuildContext(in)

	if !ctx.DateExamen.Known || ctx.DateExamen.ISO() != "2025-04-01" {
		t.Fatalf("DateExamen = %+v", ctx.DateExamen)
	}
	if !ctx.DaysUntilKnown || ctx.DaysUntilExam != 17 {
		t.Errorf("DaysUntilExam = %d (known=%v), want 17", ctx.DaysUntilExam, ctx.DaysUntilKnown)
	}
	if !ctx.CloturePassed {
		t.Error("CloturePassed must be true for a closing date in the past")
	}
	if !ctx.DateExamenFuture || ctx.DateExamenPassed {
		t.Error("exam date must be classified as future")
	}
	if ctx.CanModifyExamDate {
		t.Error("B1: validated status with passed closing date must lock the exam date")
	}
	if ctx.ExamCase != domain.CasScheduledLocked {
		t.Errorf("ExamCase = %d, want %d", ctx.ExamCase, domain.CasScheduledLocked)
	}
}

func TestBuildContextUnknownDatesDegrade(t *testing.T) {
	ctx := BuildContext(Inputs{
		Deal: domain.DealRecord{
			ExamDate: domain.DateLookup{Date: "soon", ClotureDate: ""},
		},
		Today: testToday,
	})

	if ctx.DateExamen.Known || ctx.DaysUntilKnown {
		t.Error("unparseable exam date must stay unknown")
	}
	if ctx.CloturePassed || ctx.DateExamenPassed || ctx.DateExamenFuture {
		t.Error("temporal predicates must degrade to false on unknown dates")
	}
	if !ctx.CanModifyExamDate {
		t.Error("exam date must stay modifiable when nothing is known")
	}
}

func TestBuildContextIntentFacts(t *testing.T) {
	ctx := BuildContext(Inputs{
		Triage: domain.TriageResult{
			PrimaryIntent:    "demande_report",
			SecondaryIntents: []string{"demande_identifiants"},
			IntentContext:    domain.IntentContext{ForceMajeure: true, ForceMajeureType: "medical"},
		},
		Today: testToday,
	})

	if ctx.PrimaryIntent != "demande_report" {
		t.Errorf("PrimaryIntent = %q", ctx.PrimaryIntent)
	}
	if !ctx.HasIntent("demande_identifiants") {
		t.Error("secondary intent must be visible through HasIntent")
	}
	if !ctx.ForceMajeure {
		t.Error("force majeure flag must be carried into the context")
	}
}

func TestBuildContextDefaultsTodayToNow(t *testing.T) {
	ctx := BuildContext(Inputs{})
	if ctx.Today.IsZero() {
		t.Fatal("Today must be populated when not injected")
	}
	if ctx.Today != domain.Truncate(ctx.Today) {
		t.Error("Today must be truncated to a civil date")
	}
}
