package detector

import (
	"reflect"
	"testing"

	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/platform/logger"
	"examdesk_backend/platform/validator"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	cat, err := catalog.LoadDefault(validator.New())
	if err != nil {
		t.Fatalf("LoadDefault(): %v", err)
	}
	return New(cat, logger.New("development"))
}

func TestDetectAllBlockingWins(t *testing.T) {
	d := newTestDetector(t)

	states := d.DetectAll(Inputs{
		Deal:    domain.DealRecord{ID: "d1", Evalbox: domain.EvalboxValideCMA},
		Linking: domain.LinkingResult{HasDuplicateOffer: true, NeedsClarification: true},
		Today:   testToday,
	})

	if !states.HasBlocking() {
		t.Fatal("expected a blocking state")
	}
	// doublon_offre has lower priority than clarification_requise; only the
	// first blocking match is recorded.
	if states.Blocking.ID != "doublon_offre" {
		t.Errorf("Blocking = %q, want doublon_offre", states.Blocking.ID)
	}
	if states.Primary() != states.Blocking {
		t.Error("primary must be the blocking state when one exists")
	}
}

func TestDetectAllWarningsCollectedDespiteBlocking(t *testing.T) {
	d := newTestDetector(t)

	states := d.DetectAll(Inputs{
		Deal: domain.DealRecord{
			ID: "d1", Evalbox: domain.EvalboxValideCMA,
			PersonalAccountPayment: true,
			ExamDate:               domain.DateLookup{Date: "2025-04-01", ClotureDate: "2025-03-01"},
		},
		Linking: domain.LinkingResult{HasDuplicateOffer: true},
		Today:   testToday,
	})

	if !states.HasBlocking() {
		t.Fatal("expected a blocking state")
	}

	warnings := map[string]bool{}
	for _, w := range states.Warnings {
		warnings[w.ID] = true
	}
	if !warnings["cloture_passee"] || !warnings["paiement_compte_perso"] {
		t.Errorf("warnings must keep being collected after a blocking match, got %v", warnings)
	}
}

func TestDetectAllConvocationScenario(t *testing.T) {
	d := newTestDetector(t)

	states := d.DetectAll(Inputs{
		Deal: domain.DealRecord{
			ID:      "d1",
			Evalbox: domain.EvalboxConvocRecue,
			ExamDate: domain.DateLookup{
				Date:        "2025-04-01",
				ClotureDate: "2025-03-01",
			},
		},
		Portal: domain.PortalRecord{AccountExists: true, ConnectionOK: true},
		Today:  testToday,
	})

	primary := states.Primary()
	if primary == nil {
		t.Fatal("expected a primary state")
	}
	if primary.Category != "convocation" {
		t.Errorf("primary category = %q, want convocation", primary.Category)
	}
	if primary.WorkflowAction != domain.ActionRespond {
		t.Errorf("workflow action = %q, want respond", primary.WorkflowAction)
	}
	if states.HasBlocking() {
		t.Error("convocation received must not block")
	}
}

func TestDetectAllFallsBackToGeneral(t *testing.T) {
	d := newTestDetector(t)

	states := d.DetectAll(Inputs{
		Deal:  domain.DealRecord{ID: "d1"},
		Today: testToday,
	})

	primary := states.Primary()
	if primary == nil || primary.ID != "general" {
		t.Fatalf("primary = %+v, want the general fallback", primary)
	}
}

func TestDetectAllSyntheticGeneralWithoutFallback(t *testing.T) {
	doc := `
version: 1
states:
  - id: only_blocking
    name: Only blocking
    priority: 1
    category: linking
    severity: BLOCKING
    detection:
      method: field_equals
      condition: {field: has_duplicate_offer, equals: "true"}
    workflow: {action: escalate}
`
	cat, err := catalog.Load([]byte(doc), validator.New())
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	d := New(cat, logger.New("development"))

	states := d.DetectAll(Inputs{Deal: domain.DealRecord{ID: "d1"}, Today: testToday})
	if primary := states.Primary(); primary == nil || primary.ID != "general" {
		t.Fatalf("expected synthetic general state, got %+v", primary)
	}
}

func TestDetectAllIdempotent(t *testing.T) {
	d := newTestDetector(t)
	in := Inputs{
		Deal: domain.DealRecord{
			ID: "d1", Evalbox: domain.EvalboxConvocRecue, UberOffer: true,
			DossierReceivedAt: "2025-03-01", DocumentsComplete: true,
			DocumentsValidated: true, UberEligible: true,
			ExamDate: domain.DateLookup{Date: "2025-04-01", ClotureDate: "2025-03-20"},
		},
		Portal:  domain.PortalRecord{AccountExists: true},
		Triage:  domain.TriageResult{PrimaryIntent: "demande_report"},
		Linking: domain.LinkingResult{DealID: "d1"},
		Today:   testToday,
	}

	first := d.DetectAll(in)
	second := d.DetectAll(in)

	if !reflect.DeepEqual(summarize(first), summarize(second)) {
		t.Errorf("detection is not idempotent:\n%v\n%v", summarize(first), summarize(second))
	}
}

// summarize reduces DetectedStates to comparable data (the context pointers
// differ between calls by construction).
func summarize(s *domain.DetectedStates) map[string][]string {
	out := map[string][]string{}
	if s.Blocking != nil {
		out["blocking"] = []string{s.Blocking.ID}
	}
	for _, w := range s.Warnings {
		out["warnings"] = append(out["warnings"], w.ID)
	}
	for _, i := range s.Infos {
		out["infos"] = append(out["infos"], i.ID)
	}
	return out
}
