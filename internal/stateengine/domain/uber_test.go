package domain

import (
	"testing"
	"time"
)

var testToday = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func TestDetermineUberCase(t *testing.T) {
	tests := []struct {
		name   string
		deal   DealRecord
		portal PortalRecord
		want   UberCase
	}{
		{
			name: "deal without offer",
			deal: DealRecord{ID: "d1", UberOffer: false},
			want: UberNotUber,
		},
		{
			name: "offer claimed but no deal yet",
			deal: DealRecord{UberOffer: true},
			want: UberProspect,
		},
		{
			name:   "offer claimed, no account and no dossier",
			deal:   DealRecord{ID: "d1", UberOffer: true},
			portal: PortalRecord{AccountExists: false},
			want:   UberProspect,
		},
		{
			name:   "missing documents",
			deal:   DealRecord{ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10"},
			portal: PortalRecord{AccountExists: true},
			want:   UberCaseA,
		},
		{
			name: "documents pending validation",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10",
				DocumentsComplete: true,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberCaseB,
		},
		{
			name: "unverified account after grace period",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10",
				DocumentsComplete: true, DocumentsValidated: true,
				AccountVerified: false, UberEligible: true,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberCaseD,
		},
		{
			name: "unverified account within grace period falls through",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-15",
				DocumentsComplete: true, DocumentsValidated: true,
				AccountVerified: false, UberEligible: true,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberEligible,
		},
		{
			name: "ineligible",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10",
				DocumentsComplete: true, DocumentsValidated: true,
				AccountVerified: true, UberEligible: false,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberCaseE,
		},
		{
			name: "unverified and ineligible reports D",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10",
				DocumentsComplete: true, DocumentsValidated: true,
				AccountVerified: false, UberEligible: false,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberCaseD,
		},
		{
			name: "fully eligible",
			deal: DealRecord{
				ID: "d1", UberOffer: true, DossierReceivedAt: "2025-03-10",
				DocumentsComplete: true, DocumentsValidated: true,
				AccountVerified: true, UberEligible: true,
			},
			portal: PortalRecord{AccountExists: true},
			want:   UberEligible,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetermineUberCase(tc.deal, tc.portal, testToday)
			if got != tc.want {
				t.Errorf("DetermineUberCase() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestDetermineUberCaseTotality enumerates every boolean combination of the
// deal flags and checks the classifier always returns one of the six
// defined tags.
func TestDetermineUberCaseTotality(t *testing.T) {
	valid := map[UberCase]bool{
		UberProspect: true, UberNotUber: true, UberCaseA: true,
		UberCaseB: true, UberCaseD: true, UberCaseE: true, UberEligible: true,
	}

	bools := []bool{false, true}
	for _, offer := range bools {
		for _, complete := range bools {
			for _, validated := range bools {
				for _, verified := range bools {
					for _, eligible := range bools {
						for _, accountExists := range bools {
							for _, hasDossier := range bools {
								deal := DealRecord{
									ID:                 "d1",
									UberOffer:          offer,
									DocumentsComplete:  complete,
									DocumentsValidated: validated,
									AccountVerified:    verified,
									UberEligible:       eligible,
								}
								if hasDossier {
									deal.DossierReceivedAt = "2025-03-01"
								}
								got := DetermineUberCase(deal, PortalRecord{AccountExists: accountExists}, testToday)
								if !valid[got] {
									t.Fatalf("unexpected case %q for deal %+v", got, deal)
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestVerificationGraceElapsed(t *testing.T) {
	tests := []struct {
		received string
		want     bool
	}{
		{"2025-03-13", true},
		{"2025-03-14", true},
		{"2025-03-15", false},
		{"", false},
		{"not a date", false},
	}
	for _, tc := range tests {
		if got := VerificationGraceElapsed(tc.received, testToday); got != tc.want {
			t.Errorf("VerificationGraceElapsed(%q) = %v, want %v", tc.received, got, tc.want)
		}
	}
}
