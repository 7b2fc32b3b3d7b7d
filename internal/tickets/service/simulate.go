package service

import (
	"examdesk_backend/internal/stateengine/detector"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/templates"
)

// SimulateRequest carries a complete candidate situation supplied by the
// caller, so an evaluation can be replayed without touching the helpdesk,
// the CRM or the portal.
type SimulateRequest struct {
	Deal             domain.DealRecord        `json:"deal"`
	Portal           domain.PortalRecord      `json:"portal"`
	Triage           domain.TriageResult      `json:"triage"`
	Linking          domain.LinkingResult     `json:"linking"`
	Message          string                   `json:"message"`
	ProposedSessions []domain.ProposedSession `json:"proposedSessions"`
	ProposedDates    []domain.ProposedDate    `json:"proposedDates"`
	// Today is ISO (YYYY-MM-DD); empty means the current date.
	Today string `json:"today"`
}

// SimulateResult is the side-effect-free evaluation outcome.
type SimulateResult struct {
	Detected  *domain.DetectedStates  `json:"detected"`
	Template  string                  `json:"template"`
	CRMResult *domain.CRMUpdateResult `json:"crmResult"`
}

// Simulate runs the state engine on caller-supplied records. Nothing is
// persisted, drafted or written back; this backs the dry-run endpoint used
// to test catalog changes.
func (s *Service) Simulate(req SimulateRequest) *SimulateResult {
	in := detector.Inputs{
		Deal:    req.Deal,
		Portal:  req.Portal,
		Triage:  req.Triage,
		Linking: req.Linking,
		Today:   s.deps.Clock(),
	}
	if today := domain.ParseDate(req.Today); today.Known {
		in.Today = today.Time
	}

	detected := s.deps.Detector.DetectAll(in)
	primary := detected.Primary()

	result := &SimulateResult{
		Detected: detected,
		Template: templates.Select(primary),
	}
	if !detected.HasBlocking() {
		result.CRMResult = s.deps.Updater.DetermineUpdates(primary, req.Message, req.ProposedSessions, req.ProposedDates)
	}
	return result
}
