package domain

// CRMUpdateResult reports the fate of every candidate CRM field mutation.
// A field appears in exactly one of Applied, Blocked or Skipped; nothing is
// ever dropped silently.
type CRMUpdateResult struct {
	Applied map[string]string `json:"applied"`
	Blocked map[string]string `json:"blocked"`
	Skipped map[string]string `json:"skipped"`
	Errors  []string          `json:"errors"`
}

// NewCRMUpdateResult returns an empty result with initialized maps.
func NewCRMUpdateResult() *CRMUpdateResult {
	return &CRMUpdateResult{
		Applied: map[string]string{},
		Blocked: map[string]string{},
		Skipped: map[string]string{},
	}
}

// Block moves a field out of Applied into Blocked with a reason. A field
// that was never applied is still recorded as blocked.
func (r *CRMUpdateResult) Block(field, reason string) {
	delete(r.Applied, field)
	delete(r.Skipped, field)
	r.Blocked[field] = reason
}

// Skip records a field as skipped with a reason, unless it already has an
// applied or blocked outcome.
func (r *CRMUpdateResult) Skip(field, reason string) {
	if _, ok := r.Applied[field]; ok {
		return
	}
	if _, ok := r.Blocked[field]; ok {
		return
	}
	r.Skipped[field] = reason
}

// ValidationIssue is one finding of the response validator.
type ValidationIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Issue types emitted by the response validator.
const (
	IssueForbiddenTerm         = "forbidden_term"
	IssueMissingBlock          = "missing_block"
	IssueForbiddenBlock        = "forbidden_block"
	IssueUnknownDate           = "unknown_date"
	IssuePastDate              = "past_date"
	IssueIdentifierMismatch    = "identifier_mismatch"
	IssuePhoneMismatch         = "phone_mismatch"
	IssueForbiddenAmount       = "forbidden_amount"
	IssueUnknownAmount         = "unknown_amount"
	IssueLengthOutOfBounds     = "length_out_of_bounds"
	IssueMissingGreeting       = "missing_greeting"
	IssueMissingSignoff        = "missing_signoff"
	IssueUnresolvedPlaceholder = "unresolved_placeholder"
)

// ValidationResult is the outcome of the seven response checks. Valid is
// true exactly when Errors is empty; warnings never flip validity.
type ValidationResult struct {
	Valid        bool              `json:"valid"`
	Errors       []ValidationIssue `json:"errors"`
	Warnings     []ValidationIssue `json:"warnings"`
	ChecksPassed []string          `json:"checksPassed"`
}

// AddError appends an error and marks the result invalid.
func (r *ValidationResult) AddError(issueType, message string) {
	r.Errors = append(r.Errors, ValidationIssue{Type: issueType, Message: message})
	r.Valid = false
}

// AddWarning appends a warning without affecting validity.
func (r *ValidationResult) AddWarning(issueType, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{Type: issueType, Message: message})
}
