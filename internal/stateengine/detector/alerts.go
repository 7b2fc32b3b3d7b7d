package detector

import (
	"fmt"

	"examdesk_backend/internal/stateengine/domain"
)

// CollectAlerts scans the context for ancillary conditions, independently
// of which catalog state wins. Alerts are appended to the outgoing message
// by the renderer; they never block the workflow. Case D (unverified
// account) and case E (ineligible) are mutually exclusive here, with D
// taking precedence when both would hold.
func CollectAlerts(ctx *domain.EvaluationContext) []domain.Alert {
	var alerts []domain.Alert

	switch ctx.UberCase {
	case domain.UberCaseD:
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertUnverifiedAccount,
			Message: "Le compte Uber du candidat n'est toujours pas vérifié après le délai de grâce.",
		})
	case domain.UberCaseE:
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertIneligible,
			Message: "Le candidat ne remplit pas les conditions de l'offre Uber.",
		})
	}

	if ctx.Deal.PersonalAccountPayment {
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertPersonalAccountPayment,
			Message: "Le paiement a été effectué depuis un compte personnel et non le compte professionnel.",
		})
	}

	if ctx.Portal.ExtractionFailed {
		msg := "L'extraction des données Evalbox a échoué."
		if ctx.Portal.ExtractionErrorType != "" {
			msg = fmt.Sprintf("L'extraction des données Evalbox a échoué (%s).", ctx.Portal.ExtractionErrorType)
		}
		alerts = append(alerts, domain.Alert{Type: domain.AlertExtractionFailure, Message: msg})
	}

	if ctx.Linking.HasDuplicateOffer {
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertDuplicateOffer,
			Message: "Une seconde opportunité porte la même offre promotionnelle.",
		})
	}

	return alerts
}
