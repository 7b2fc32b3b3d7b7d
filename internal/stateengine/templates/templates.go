// Package templates owns the outgoing-message template table and the
// selection logic that picks a template for a detected state. The
// override-template list lives here, as the single source shared with the
// response validator's skip rule.
package templates

// Template names referenced by the catalog.
const (
	TplPropositionDates    = "proposition_dates"
	TplConfirmationSession = "confirmation_session"
	TplReportDate          = "report_date"
	TplEnvoiIdentifiants   = "envoi_identifiants"
	TplConvocationRecue    = "convocation_recue"
	TplResultats           = "resultats_disponibles"
	TplRappelExamen        = "rappel_examen"
	TplAttenteResultats    = "attente_resultats"
	TplOffreUberProspect   = "offre_uber_prospect"
	TplReponseGenerale     = "reponse_generale"
)

// Override templates substituted for a state's default when a detected
// intent or blocking condition makes the default blocks irrelevant.
const (
	TplReportBloque      = "report_bloque"
	TplRefusIdentifiants = "refus_partage_identifiants"
)

// Intents that drive template selection and the validator's skip rule.
const (
	IntentDemandeReport       = "demande_report"
	IntentDemandeIdentifiants = "demande_identifiants"
	IntentRefusPartage        = "refus_partage_identifiants"
	IntentChoixSession        = "choix_session"
	IntentChoixDate           = "choix_date"
)

// OverrideFragments identifies override templates by name fragment. The
// response validator skips required-block validation when the template
// actually used matches one of these, since the state's declared blocks no
// longer apply. Kept here (not duplicated in the validator) so the two
// components cannot drift apart.
var OverrideFragments = []string{
	"report_bloque",
	"refus_partage",
}

// OverrideIntents are intents that trigger the same skip even when the
// template name is not an override fragment.
var OverrideIntents = []string{
	IntentRefusPartage,
}
