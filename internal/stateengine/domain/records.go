// Package domain holds the data model and pure business rules of the
// candidate-state engine: input records, the evaluation context, the
// classification decision trees and the result types. Nothing in this
// package performs I/O.
package domain

// Evalbox statuses as they appear on the CRM deal. The Evalbox field
// tracks the dossier's validation stage at the regulatory body (CMA).
const (
	EvalboxDossierEnAttente = "Dossier en attente"
	EvalboxDossierRecu      = "Dossier reçu"
	EvalboxDossierIncomplet = "Dossier incomplet"
	EvalboxRefuseCMA        = "Refusé CMA"
	EvalboxValideCMA        = "VALIDE CMA"
	EvalboxConvocRecue      = "Convoc CMA reçue"
	EvalboxExamenPasse      = "Examen passé"
	EvalboxResultatsDispo   = "Résultats disponibles"
)

// CRM field names targeted by the updater. These match the CRM schema
// verbatim, so they are data, not Go identifiers.
const (
	FieldPreferenceHoraire = "Preference_horaire"
	FieldSession           = "Session"
	FieldDateExamen        = "Date_Examen"
)

// Session type tags used on proposed sessions and as the value of the
// Preference_horaire field.
const (
	SessionJour = "jour"
	SessionSoir = "soir"
)

// DateLookup is a CRM lookup-typed date field: the date itself plus the
// metadata embedded in the lookup record.
type DateLookup struct {
	Date        string `json:"date"`
	ClotureDate string `json:"clotureDate"`
	SessionID   string `json:"sessionId"`
}

// DealRecord is the CRM deal (opportunity) as handed to the engine by the
// orchestration layer. Field values arrive as-is from the CRM; all
// normalization happens in the context builder.
type DealRecord struct {
	ID            string     `json:"id"`
	CandidateName string     `json:"candidateName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Evalbox       string     `json:"evalbox"`
	Stage         string     `json:"stage"`
	Amount        float64    `json:"amount"`
	ExamDate      DateLookup `json:"examDate"`

	// Uber 20€ offer tracking.
	UberOffer              bool   `json:"uberOffer"`
	UberEligible           bool   `json:"uberEligible"`
	AccountVerified        bool   `json:"accountVerified"`
	PersonalAccountPayment bool   `json:"personalAccountPayment"`
	DocumentsComplete      bool   `json:"documentsComplete"`
	DocumentsValidated     bool   `json:"documentsValidated"`
	DossierReceivedAt      string `json:"dossierReceivedAt"`

	// DatesProposed is set when exam dates have been offered to the
	// candidate and no choice has been recorded yet.
	DatesProposed bool `json:"datesProposed"`

	// Exam-platform credentials stored on the deal, sent to the candidate
	// on request.
	PortalLogin    string `json:"portalLogin"`
	PortalPassword string `json:"portalPassword"`
}

// PortalRecord is the exam-portal extraction result for the candidate.
type PortalRecord struct {
	AccountExists       bool   `json:"accountExists"`
	ConnectionOK        bool   `json:"connectionOk"`
	ExtractionFailed    bool   `json:"extractionFailed"`
	ExtractionErrorType string `json:"extractionErrorType"`
	DossierStatus       string `json:"dossierStatus"`
}

// IntentContext carries the force-majeure sub-flags extracted during triage.
type IntentContext struct {
	ForceMajeure        bool   `json:"forceMajeure"`
	ForceMajeureType    string `json:"forceMajeureType"`
	ForceMajeureDetails string `json:"forceMajeureDetails"`
}

// TriageResult is the output of the upstream triage agent.
type TriageResult struct {
	Action           string        `json:"action"`
	PrimaryIntent    string        `json:"primaryIntent"`
	SecondaryIntents []string      `json:"secondaryIntents"`
	IntentContext    IntentContext `json:"intentContext"`
}

// LinkingResult is the output of the upstream deal-linking agent.
type LinkingResult struct {
	DealID            string `json:"dealId"`
	HasDuplicateOffer bool   `json:"hasDuplicateOffer"`
	NeedsClarification bool  `json:"needsClarification"`
}

// ThreadMessage is one message of the ticket conversation thread.
// Direction is "in" for candidate messages and "out" for our replies.
type ThreadMessage struct {
	Direction string `json:"direction"`
	Text      string `json:"text"`
}

// ProposedSession is an exam session that was actually offered to the
// candidate, identified by its CRM record ID and its session-type tag.
type ProposedSession struct {
	ID          string `json:"id"`
	SessionType string `json:"sessionType"`
	Date        string `json:"date"`
}

// ProposedDate is an exam date that was actually offered to the candidate.
// Date is ISO (YYYY-MM-DD).
type ProposedDate struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}
