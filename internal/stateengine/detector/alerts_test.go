package detector

import (
	"testing"

	"examdesk_backend/internal/stateengine/domain"
)

func alertTypes(alerts []domain.Alert) map[string]bool {
	out := map[string]bool{}
	for _, a := range alerts {
		out[a.Type] = true
	}
	return out
}

func TestCollectAlerts(t *testing.T) {
	tests := []struct {
		name string
		ctx  domain.EvaluationContext
		want []string
	}{
		{
			name: "unverified account",
			ctx:  domain.EvaluationContext{UberCase: domain.UberCaseD},
			want: []string{domain.AlertUnverifiedAccount},
		},
		{
			name: "ineligible",
			ctx:  domain.EvaluationContext{UberCase: domain.UberCaseE},
			want: []string{domain.AlertIneligible},
		},
		{
			name: "personal account payment",
			ctx: domain.EvaluationContext{
				UberCase: domain.UberEligible,
				Deal:     domain.DealRecord{PersonalAccountPayment: true},
			},
			want: []string{domain.AlertPersonalAccountPayment},
		},
		{
			name: "extraction failure",
			ctx: domain.EvaluationContext{
				UberCase: domain.UberNotUber,
				Portal:   domain.PortalRecord{ExtractionFailed: true, ExtractionErrorType: "captcha"},
			},
			want: []string{domain.AlertExtractionFailure},
		},
		{
			name: "duplicate offer",
			ctx: domain.EvaluationContext{
				UberCase: domain.UberNotUber,
				Linking:  domain.LinkingResult{HasDuplicateOffer: true},
			},
			want: []string{domain.AlertDuplicateOffer},
		},
		{
			name: "clean context yields no alerts",
			ctx:  domain.EvaluationContext{UberCase: domain.UberEligible},
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := alertTypes(CollectAlerts(&tc.ctx))
			if len(got) != len(tc.want) {
				t.Fatalf("alerts = %v, want %v", got, tc.want)
			}
			for _, w := range tc.want {
				if !got[w] {
					t.Errorf("missing alert %q", w)
				}
			}
		})
	}
}

// Case D and case E are mutually exclusive by construction: the uber-case
// classifier produces a single tag and D is checked before E.
func TestCollectAlertsDPrecedesE(t *testing.T) {
	deal := domain.DealRecord{
		ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-01",
		DocumentsComplete: true, DocumentsValidated: true,
		AccountVerified: false, UberEligible: false,
	}
	ctx := BuildContext(Inputs{Deal: deal, Portal: domain.PortalRecord{AccountExists: true}, Today: testToday})

	got := alertTypes(CollectAlerts(ctx))
	if !got[domain.AlertUnverifiedAccount] {
		t.Error("expected the unverified-account alert")
	}
	if got[domain.AlertIneligible] {
		t.Error("ineligible alert must not fire when case D applies")
	}
}
