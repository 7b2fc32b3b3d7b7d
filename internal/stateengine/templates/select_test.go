package templates

import (
	"testing"

	"examdesk_backend/internal/stateengine/domain"
)

func stateWithTemplate(tpl string, ctx *domain.EvaluationContext) *domain.DetectedState {
	return &domain.DetectedState{
		StateDefinition: domain.StateDefinition{
			ID:       "test",
			Response: domain.ResponseConfig{Template: tpl},
		},
		Context: ctx,
	}
}

func TestSelectDefaultTemplate(t *testing.T) {
	state := stateWithTemplate(TplPropositionDates, &domain.EvaluationContext{CanModifyExamDate: true})
	if got := Select(state); got != TplPropositionDates {
		t.Errorf("Select = %q, want %q", got, TplPropositionDates)
	}
}

func TestSelectReportBloqueOverride(t *testing.T) {
	ctx := &domain.EvaluationContext{
		PrimaryIntent:     IntentDemandeReport,
		CanModifyExamDate: false,
	}
	state := stateWithTemplate(TplReportDate, ctx)
	if got := Select(state); got != TplReportBloque {
		t.Errorf("Select = %q, want %q", got, TplReportBloque)
	}
}

func TestSelectReportNotBlockedWhenModifiable(t *testing.T) {
	ctx := &domain.EvaluationContext{
		PrimaryIntent:     IntentDemandeReport,
		CanModifyExamDate: true,
	}
	state := stateWithTemplate(TplReportDate, ctx)
	if got := Select(state); got != TplReportDate {
		t.Errorf("Select = %q, want %q", got, TplReportDate)
	}
}

func TestSelectRefusIdentifiantsOverride(t *testing.T) {
	ctx := &domain.EvaluationContext{
		PrimaryIntent:     IntentDemandeIdentifiants,
		SecondaryIntents:  []string{IntentRefusPartage},
		CanModifyExamDate: true,
	}
	state := stateWithTemplate(TplEnvoiIdentifiants, ctx)
	if got := Select(state); got != TplRefusIdentifiants {
		t.Errorf("Select = %q, want %q", got, TplRefusIdentifiants)
	}
}

func TestSelectFallsBackToGeneral(t *testing.T) {
	if got := Select(nil); got != TplReponseGenerale {
		t.Errorf("Select(nil) = %q, want %q", got, TplReponseGenerale)
	}
	state := stateWithTemplate("", &domain.EvaluationContext{CanModifyExamDate: true})
	if got := Select(state); got != TplReponseGenerale {
		t.Errorf("Select(empty template) = %q, want %q", got, TplReponseGenerale)
	}
}

func TestIsOverride(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{TplReportBloque, true},
		{TplRefusIdentifiants, true},
		{"report_bloque_v2", true},
		{TplReportDate, false},
		{TplEnvoiIdentifiants, false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsOverride(tc.name); got != tc.want {
			t.Errorf("IsOverride(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEveryCatalogTemplateHasABody(t *testing.T) {
	for _, name := range []string{
		TplPropositionDates, TplConfirmationSession, TplReportDate,
		TplEnvoiIdentifiants, TplConvocationRecue, TplResultats,
		TplRappelExamen, TplAttenteResultats, TplOffreUberProspect,
		TplReponseGenerale, TplReportBloque, TplRefusIdentifiants,
	} {
		if _, ok := Body(name); !ok {
			t.Errorf("no body for template %q", name)
		}
	}
}
