package domain

import "time"

// UberCase classifies the fulfillment state of the 20€ Uber promotional
// offer for a candidate.
type UberCase string

const (
	// UberProspect: the offer was claimed but no dossier exists yet.
	UberProspect UberCase = "PROSPECT"
	// UberNotUber: the deal does not carry the Uber offer at all.
	UberNotUber UberCase = "NOT_UBER"
	// UberCaseA: registration documents are missing.
	UberCaseA UberCase = "A"
	// UberCaseB: documents submitted but not yet validated.
	UberCaseB UberCase = "B"
	// UberCaseD: the Uber account is still unverified after the grace period.
	UberCaseD UberCase = "D"
	// UberCaseE: the candidate is not eligible for the offer.
	UberCaseE UberCase = "E"
	// UberEligible: every offer condition is satisfied.
	UberEligible UberCase = "ELIGIBLE"
)

// verificationGraceDays is the delay granted after dossier reception before
// an unverified account becomes case D.
const verificationGraceDays = 1

// DetermineUberCase classifies the offer state. The conditions are checked
// in a fixed order so that exactly one case is produced for any input:
// NOT_UBER, PROSPECT, A, B, D, E, then ELIGIBLE. D is checked before E, so
// an unverified ineligible candidate reports D.
func DetermineUberCase(deal DealRecord, portal PortalRecord, today time.Time) UberCase {
	if !deal.UberOffer {
		return UberNotUber
	}
	if deal.ID == "" || (!portal.AccountExists && deal.DossierReceivedAt == "") {
		return UberProspect
	}
	if !deal.DocumentsComplete {
		return UberCaseA
	}
	if !deal.DocumentsValidated {
		return UberCaseB
	}
	if !deal.AccountVerified && VerificationGraceElapsed(deal.DossierReceivedAt, today) {
		return UberCaseD
	}
	if !deal.UberEligible {
		return UberCaseE
	}
	return UberEligible
}

// VerificationGraceElapsed reports whether the verification grace period
// (dossier reception + one day) has elapsed. An unknown reception date means
// the grace period never elapses.
func VerificationGraceElapsed(dossierReceivedAt string, today time.Time) bool {
	received := ParseDate(dossierReceivedAt)
	if !received.Known {
		return false
	}
	deadline := received.Time.AddDate(0, 0, verificationGraceDays)
	return !Truncate(today).Before(deadline)
}
