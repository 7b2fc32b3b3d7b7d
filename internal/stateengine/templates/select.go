package templates

import (
	"strings"

	"examdesk_backend/internal/stateengine/domain"
)

// Select returns the template to draft from for a detected state. The
// catalog's default template is replaced by an override when the
// candidate's intent makes the default blocks wrong: a postponement request
// on a locked dossier must not receive the normal rescheduling template,
// and a candidate refusing to share credentials must not receive them.
func Select(state *domain.DetectedState) string {
	if state == nil {
		return TplReponseGenerale
	}
	if ctx := state.Context; ctx != nil {
		if ctx.HasIntent(IntentDemandeReport) && !ctx.CanModifyExamDate {
			return TplReportBloque
		}
		if ctx.HasIntent(IntentRefusPartage) {
			return TplRefusIdentifiants
		}
	}
	if t := state.Response.Template; t != "" {
		return t
	}
	return TplReponseGenerale
}

// IsOverride reports whether a template name designates an override
// template, matched by fragment so renamed variants keep working.
func IsOverride(name string) bool {
	folded := strings.ToLower(name)
	for _, fragment := range OverrideFragments {
		if strings.Contains(folded, fragment) {
			return true
		}
	}
	return false
}

// IsOverrideIntent reports whether an intent value triggers the validator's
// required-block skip on its own.
func IsOverrideIntent(intent string) bool {
	for _, v := range OverrideIntents {
		if intent == v {
			return true
		}
	}
	return false
}
