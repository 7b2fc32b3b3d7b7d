package domain

// Severity classifies a candidate state's effect on the workflow.
type Severity string

const (
	// SeverityBlocking halts the automated workflow; the ticket is
	// surfaced to a human instead of receiving a drafted reply.
	SeverityBlocking Severity = "BLOCKING"
	// SeverityWarning overlays informational caveats on the response.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo drives normal template selection.
	SeverityInfo Severity = "INFO"
)

// Workflow actions a state can instruct the orchestrator to take.
const (
	ActionRespond  = "respond"
	ActionEscalate = "escalate"
	ActionWait     = "wait"
	ActionClose    = "close"
)

// UpdateMethod selects the CRM updater's extraction procedure.
type UpdateMethod string

const (
	// UpdateNone: the state defines no CRM mutation.
	UpdateNone UpdateMethod = ""
	// UpdateSessionChoice extracts a day/evening session preference.
	UpdateSessionChoice UpdateMethod = "session_choice"
	// UpdateDateChoice extracts an exam-date selection.
	UpdateDateChoice UpdateMethod = "date_choice"
)

// ResponseConfig describes how a state's reply must be assembled: which
// template to start from and which content blocks must or must not appear.
type ResponseConfig struct {
	Template        string   `yaml:"template" json:"template"`
	BlocksRequired  []string `yaml:"blocks_required" json:"blocksRequired"`
	BlocksForbidden []string `yaml:"blocks_forbidden" json:"blocksForbidden"`
}

// StateDefinition is one catalog entry, immutable after load and shared
// read-only across all evaluations.
type StateDefinition struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Priority       int            `json:"priority"`
	Category       string         `json:"category"`
	Severity       Severity       `json:"severity"`
	WorkflowAction string         `json:"workflowAction"`
	Response       ResponseConfig `json:"response"`
	UpdateMethod   UpdateMethod   `json:"updateMethod"`
}

// Alert is an ancillary condition surfaced alongside the detected state.
// Alerts never affect control flow; they become appended response content.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Alert types produced by the collector.
const (
	AlertUnverifiedAccount      = "unverified_account"
	AlertIneligible             = "ineligible"
	AlertPersonalAccountPayment = "personal_account_payment"
	AlertExtractionFailure      = "extraction_failure"
	AlertDuplicateOffer         = "duplicate_offer"
)

// DetectedState is the result of matching one catalog entry against one
// context. It is created fresh per detection call and never persisted by
// the engine itself.
type DetectedState struct {
	StateDefinition
	Context        *EvaluationContext `json:"-"`
	Alerts         []Alert            `json:"alerts"`
	ResolvedIntent string             `json:"resolvedIntent"`
}

// DetectedStates aggregates one detection pass. At most one blocking state
// is recorded (first match in priority order); warnings and infos are
// collected exhaustively regardless of a blocking match.
type DetectedStates struct {
	Blocking *DetectedState   `json:"blocking,omitempty"`
	Warnings []*DetectedState `json:"warnings"`
	Infos    []*DetectedState `json:"infos"`
	All      []*DetectedState `json:"all"`
}

// Primary returns the backward-compatible single state: the blocking state
// when present, otherwise the first info state, otherwise nil.
func (d *DetectedStates) Primary() *DetectedState {
	if d.Blocking != nil {
		return d.Blocking
	}
	if len(d.Infos) > 0 {
		return d.Infos[0]
	}
	return nil
}

// HasBlocking reports whether the automated workflow must halt.
func (d *DetectedStates) HasBlocking() bool {
	return d.Blocking != nil
}
