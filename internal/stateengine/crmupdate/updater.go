package crmupdate

import (
	"fmt"

	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/platform/logger"
)

// Updater derives CRM field mutations from a detected state and the
// candidate's reply. It is stateless and safe for concurrent use.
type Updater struct {
	log *logger.Logger
}

// New creates an updater.
func New(log *logger.Logger) *Updater {
	return &Updater{log: log}
}

// DetermineUpdates runs the extraction procedure declared by the state's
// update rule, then applies the B1 blocking rule. Every candidate field
// ends up in exactly one of applied, blocked or skipped.
func (u *Updater) DetermineUpdates(
	state *domain.DetectedState,
	message string,
	proposedSessions []domain.ProposedSession,
	proposedDates []domain.ProposedDate,
) *domain.CRMUpdateResult {
	result := domain.NewCRMUpdateResult()

	switch state.UpdateMethod {
	case domain.UpdateSessionChoice:
		u.extractSessionChoice(result, message, proposedSessions)
	case domain.UpdateDateChoice:
		u.extractDateChoice(result, message, proposedDates)
	case domain.UpdateNone:
		return result
	default:
		// Unknown method in the catalog: nothing to extract, but say so.
		result.Errors = append(result.Errors, fmt.Sprintf("méthode de mise à jour inconnue: %q", state.UpdateMethod))
		return result
	}

	u.applyBlockingRules(result, state.Context)

	if u.log != nil {
		u.log.Debug("crm updates determined",
			"state", state.ID,
			"applied", len(result.Applied),
			"blocked", len(result.Blocked),
			"skipped", len(result.Skipped),
		)
	}
	return result
}

// extractSessionChoice counts day- and evening-session vocabulary in the
// message. A preference is confident only when exactly one side scores.
func (u *Updater) extractSessionChoice(result *domain.CRMUpdateResult, message string, sessions []domain.ProposedSession) {
	day, evening := countSessionWords(message)

	switch {
	case day > 0 && evening > 0:
		result.Skip(domain.FieldPreferenceHoraire, "préférence ambiguë: le message mentionne les deux sessions")
		return
	case day == 0 && evening == 0:
		result.Skip(domain.FieldPreferenceHoraire, "aucune préférence de session exprimée dans le message")
		return
	}

	preference := domain.SessionJour
	if evening > 0 {
		preference = domain.SessionSoir
	}
	result.Applied[domain.FieldPreferenceHoraire] = preference

	// Only sessions actually offered may be written back; the engine never
	// invents an identifier.
	for _, s := range sessions {
		if s.SessionType == preference {
			result.Applied[domain.FieldSession] = s.ID
			return
		}
	}
	result.Skip(domain.FieldSession, fmt.Sprintf("aucune session %q parmi les sessions proposées", preference))
}

// extractDateChoice resolves the single exam date the candidate picked,
// disambiguating against the proposed set when several dates are mentioned.
func (u *Updater) extractDateChoice(result *domain.CRMUpdateResult, message string, proposed []domain.ProposedDate) {
	mentioned := ExtractDates(message)
	if len(mentioned) == 0 {
		result.Skip(domain.FieldDateExamen, "aucune date détectée dans le message")
		return
	}

	proposedByISO := make(map[string]domain.ProposedDate, len(proposed))
	for _, p := range proposed {
		proposedByISO[p.Date] = p
	}

	chosen := mentioned[0]
	if len(mentioned) > 1 {
		var inProposed []string
		for _, iso := range mentioned {
			if _, ok := proposedByISO[iso]; ok {
				inProposed = append(inProposed, iso)
			}
		}
		if len(inProposed) != 1 {
			result.Skip(domain.FieldDateExamen, fmt.Sprintf("choix ambigu: %d dates mentionnées", len(mentioned)))
			return
		}
		chosen = inProposed[0]
	}

	record, ok := proposedByISO[chosen]
	if !ok {
		result.Skip(domain.FieldDateExamen, fmt.Sprintf("la date %s ne figure pas parmi les dates proposées", chosen))
		return
	}

	// The CRM stores the proposed-date record ID, not the literal string.
	result.Applied[domain.FieldDateExamen] = record.ID
}

// applyBlockingRules enforces rule B1 after extraction: once the dossier is
// validated and the registration window has closed, an exam-date update is
// moved from applied to blocked.
func (u *Updater) applyBlockingRules(result *domain.CRMUpdateResult, ctx *domain.EvaluationContext) {
	if ctx == nil {
		return
	}
	if _, ok := result.Applied[domain.FieldDateExamen]; !ok {
		return
	}
	if ctx.CanModifyExamDate {
		return
	}

	reason := fmt.Sprintf(
		"règle B1: statut %q déjà validé et clôture des inscriptions dépassée (%s)",
		ctx.Deal.Evalbox, ctx.DateCloture.French(),
	)
	result.Block(domain.FieldDateExamen, reason)
}
