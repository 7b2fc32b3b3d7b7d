// Package service orchestrates one ticket evaluation end to end: fetch the
// candidate's records, run the state engine, draft and validate a reply,
// resolve CRM updates and leave an audit trail. All side effects flow
// through ports so the whole pipeline is testable with fakes.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"examdesk_backend/internal/events"
	"examdesk_backend/internal/stateengine/crmupdate"
	"examdesk_backend/internal/stateengine/detector"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/respcheck"
	"examdesk_backend/internal/stateengine/templates"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/internal/tickets/repository"
	"examdesk_backend/platform/apperr"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"
)

// EvaluationStore persists evaluation audit records.
type EvaluationStore interface {
	Save(ctx context.Context, e *repository.Evaluation) error
}

// Deps bundles everything the orchestrator needs.
type Deps struct {
	Detector  *detector.Detector
	Updater   *crmupdate.Updater
	Validator *respcheck.Validator
	Store     EvaluationStore
	Desk      ports.DeskClient
	CRM       ports.CRMClient
	Portal    ports.PortalReader
	Triager   ports.Triager
	Linker    ports.Linker
	Renderer  ports.Renderer
	Bus       events.Bus
	Config    config.EngineConfig
	Logger    *logger.Logger

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Service runs the ticket-processing pipeline.
type Service struct {
	deps Deps
}

// New creates the orchestrator service.
func New(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{deps: deps}
}

// Outcome is the full result of processing one ticket.
type Outcome struct {
	Evaluation *repository.Evaluation   `json:"evaluation"`
	Detected   *domain.DetectedStates   `json:"detected"`
	Template   string                   `json:"template,omitempty"`
	Draft      string                   `json:"draft,omitempty"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	CRMResult  *domain.CRMUpdateResult  `json:"crmResult,omitempty"`
}

// Process evaluates one ticket. Blocking states escalate instead of
// replying; everything else produces a validated draft and resolved CRM
// updates. The evaluation record is persisted in all paths.
func (s *Service) Process(ctx context.Context, ticketID string) (*Outcome, error) {
	d := s.deps

	ticket, err := d.Desk.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "ticket introuvable", err).WithOp("tickets.Process")
	}

	linking := s.resolveLinking(ctx, ticket)
	bundle := s.fetchRecords(ctx, ticket, linking)

	in := detector.Inputs{
		Deal:    bundle.deal,
		Portal:  bundle.portal,
		Triage:  bundle.triage,
		Linking: linking,
		Threads: bundle.thread,
		Today:   d.Clock(),
	}
	detected := d.Detector.DetectAll(in)
	primary := detected.Primary()

	eval := &repository.Evaluation{
		ID:             uuid.New(),
		TicketID:       ticket.ID,
		DealID:         linking.DealID,
		StateID:        primary.ID,
		Severity:       primary.Severity,
		WorkflowAction: primary.WorkflowAction,
		UberCase:       string(primary.Context.UberCase),
		ExamCase:       int(primary.Context.ExamCase),
		Alerts:         primary.Alerts,
		Escalated:      detected.HasBlocking(),
	}
	outcome := &Outcome{Evaluation: eval, Detected: detected}

	if detected.HasBlocking() {
		s.escalate(ctx, ticket, eval, detected.Blocking)
		s.persist(ctx, eval)
		s.publishCompleted(ctx, eval)
		return outcome, nil
	}

	// Updates are resolved before drafting: the reply may confirm the very
	// choice that was just extracted.
	outcome.CRMResult = s.resolveCRMUpdates(ctx, ticket, primary, bundle)
	eval.CRMResult = outcome.CRMResult

	if primary.WorkflowAction == domain.ActionRespond {
		s.draftReply(ctx, ticket, primary, bundle, eval, outcome)
	}

	s.persist(ctx, eval)
	s.publishCompleted(ctx, eval)
	return outcome, nil
}

// resolveLinking trusts the helpdesk deal reference when present and falls
// back to the linking agent. An unresolvable ticket is flagged for
// clarification, never guessed.
func (s *Service) resolveLinking(ctx context.Context, ticket *ports.Ticket) domain.LinkingResult {
	linking := domain.LinkingResult{DealID: ticket.DealID}
	if linking.DealID == "" && s.deps.Linker != nil {
		linked, err := s.deps.Linker.Link(ctx, ticket)
		if err != nil {
			s.deps.Logger.Warn("deal linking failed", "ticket", ticket.ID, "error", err)
			linking.NeedsClarification = true
			return linking
		}
		linking = linked
	}
	if linking.DealID == "" {
		linking.NeedsClarification = true
	}
	return linking
}

// recordBundle holds every external record one evaluation needs.
type recordBundle struct {
	deal     domain.DealRecord
	portal   domain.PortalRecord
	triage   domain.TriageResult
	thread   []domain.ThreadMessage
	sessions []domain.ProposedSession
	dates    []domain.ProposedDate
}

// fetchRecords pulls the deal, portal record, thread and proposed choices
// in parallel. Only the deal fetch is load-bearing: a portal failure
// degrades into an extraction-failed record (which the catalog escalates)
// and missing thread or proposals narrow the evaluation instead of
// aborting it.
func (s *Service) fetchRecords(ctx context.Context, ticket *ports.Ticket, linking domain.LinkingResult) recordBundle {
	d := s.deps
	var bundle recordBundle
	if linking.DealID == "" {
		return bundle
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deal, err := d.CRM.GetDeal(gctx, linking.DealID)
		if err != nil {
			s.deps.Logger.Error("deal fetch failed", "deal", linking.DealID, "error", err)
			return nil
		}
		bundle.deal = *deal
		return nil
	})
	g.Go(func() error {
		if d.Portal == nil {
			return nil
		}
		portal, err := d.Portal.GetPortalRecord(gctx, linking.DealID)
		if err != nil {
			bundle.portal = domain.PortalRecord{ExtractionFailed: true, ExtractionErrorType: "portal_unreachable"}
			s.deps.Logger.Warn("portal extraction failed", "deal", linking.DealID, "error", err)
			return nil
		}
		bundle.portal = *portal
		return nil
	})
	g.Go(func() error {
		thread, err := d.Desk.GetThread(gctx, ticket.ID)
		if err != nil {
			s.deps.Logger.Warn("thread fetch failed", "ticket", ticket.ID, "error", err)
			return nil
		}
		bundle.thread = thread
		return nil
	})
	g.Go(func() error {
		sessions, err := d.CRM.GetProposedSessions(gctx, linking.DealID)
		if err != nil {
			s.deps.Logger.Warn("proposed sessions fetch failed", "deal", linking.DealID, "error", err)
			return nil
		}
		bundle.sessions = sessions
		return nil
	})
	g.Go(func() error {
		dates, err := d.CRM.GetProposedDates(gctx, linking.DealID)
		if err != nil {
			s.deps.Logger.Warn("proposed dates fetch failed", "deal", linking.DealID, "error", err)
			return nil
		}
		bundle.dates = dates
		return nil
	})
	_ = g.Wait()

	if d.Triager != nil {
		triage, err := d.Triager.Triage(ctx, ticket, bundle.thread)
		if err != nil {
			s.deps.Logger.Warn("triage failed, falling back to general handling", "ticket", ticket.ID, "error", err)
		} else {
			bundle.triage = triage
		}
	}
	return bundle
}

// draftReply renders, validates and attaches the reply. An invalid draft is
// never attached: the issues go into an internal note and the evaluation is
// marked for human review.
func (s *Service) draftReply(ctx context.Context, ticket *ports.Ticket, state *domain.DetectedState, bundle recordBundle, eval *repository.Evaluation, outcome *Outcome) {
	d := s.deps

	tplName := templates.Select(state)
	body, ok := templates.Body(tplName)
	if !ok {
		body, _ = templates.Body(templates.TplReponseGenerale)
		tplName = templates.TplReponseGenerale
	}
	eval.TemplateUsed = tplName
	outcome.Template = tplName

	renderCtx := ctx
	if timeout := d.Config.GetDraftTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	login := bundle.deal.PortalLogin
	if login == "" {
		login = ticket.CandidateEmail
	}
	draft, err := d.Renderer.Render(renderCtx, ports.RenderRequest{
		TemplateName:  tplName,
		TemplateBody:  body,
		CandidateName: ticket.CandidateName,
		Message:       ticket.Message,
		ProposedDates: bundle.dates,
		Alerts:        state.Alerts,
		Login:         login,
		Password:      bundle.deal.PortalPassword,
		ExamDate:      state.Context.DateExamen.French(),
		SessionType:   sessionPreference(eval.CRMResult),
	})
	if err != nil {
		s.deps.Logger.Error("draft rendering failed", "ticket", ticket.ID, "template", tplName, "error", err)
		eval.Escalated = true
		s.note(ctx, ticket.ID, "Génération de la réponse impossible, reprise manuelle nécessaire : "+err.Error())
		return
	}

	validation := d.Validator.Validate(state, draft, respcheck.Expected{
		ProposedDates:  bundle.dates,
		CandidateEmail: ticket.CandidateEmail,
		PortalLogin:    login,
		CandidatePhone: ticket.CandidatePhone,
		TemplateUsed:   tplName,
		Today:          d.Clock(),
	})
	eval.Validation = validation
	eval.DraftBody = draft
	outcome.Draft = draft
	outcome.Validation = validation

	if validation.Valid {
		if err := d.Desk.CreateDraft(ctx, ticket.ID, draft); err != nil {
			s.deps.Logger.Error("draft attach failed", "ticket", ticket.ID, "error", err)
			eval.Escalated = true
		}
	} else {
		eval.Escalated = true
		s.note(ctx, ticket.ID, validationNote(validation))
	}

	if d.Bus != nil {
		d.Bus.Publish(ctx, events.ReplyDrafted{
			BaseEvent:    events.NewBaseEvent(),
			EvaluationID: eval.ID,
			TicketID:     ticket.ID,
			Template:     tplName,
			Valid:        validation.Valid,
			ErrorCount:   len(validation.Errors),
			WarningCount: len(validation.Warnings),
		})
	}
}

// resolveCRMUpdates extracts the candidate's choice and pushes approved
// field updates to the CRM. Blocked fields leave an internal note so the
// agent knows why nothing moved.
func (s *Service) resolveCRMUpdates(ctx context.Context, ticket *ports.Ticket, state *domain.DetectedState, bundle recordBundle) *domain.CRMUpdateResult {
	d := s.deps

	result := d.Updater.DetermineUpdates(state, ticket.Message, bundle.sessions, bundle.dates)

	if len(result.Applied) > 0 && bundle.deal.ID != "" {
		if d.Config.GetCRMWriteEnabled() {
			if err := d.CRM.UpdateDeal(ctx, bundle.deal.ID, result.Applied); err != nil {
				s.deps.Logger.Error("crm update failed", "deal", bundle.deal.ID, "error", err)
				result.Errors = append(result.Errors, "écriture CRM échouée: "+err.Error())
			}
		} else {
			s.deps.Logger.Info("crm writes disabled, updates not pushed", "deal", bundle.deal.ID)
		}
	}

	if len(result.Blocked) > 0 {
		var reasons []string
		for field, reason := range result.Blocked {
			reasons = append(reasons, fmt.Sprintf("%s : %s", field, reason))
		}
		s.note(ctx, ticket.ID, "Mise à jour CRM bloquée.\n"+strings.Join(reasons, "\n"))
	}

	if d.Bus != nil {
		d.Bus.Publish(ctx, events.CRMUpdatesResolved{
			BaseEvent: events.NewBaseEvent(),
			TicketID:  ticket.ID,
			DealID:    bundle.deal.ID,
			Applied:   result.Applied,
			Blocked:   result.Blocked,
			Skipped:   result.Skipped,
		})
	}
	return result
}

// escalate hands the ticket to a human with an internal note naming the
// blocking state and its alerts, and raises the escalation event.
func (s *Service) escalate(ctx context.Context, ticket *ports.Ticket, eval *repository.Evaluation, blocking *domain.DetectedState) {
	note := escalationNote(blocking)
	s.note(ctx, ticket.ID, note)

	if s.deps.Bus != nil {
		alerts := make([]string, 0, len(blocking.Alerts))
		for _, a := range blocking.Alerts {
			alerts = append(alerts, a.Message)
		}
		s.deps.Bus.Publish(ctx, events.EscalationRaised{
			BaseEvent:    events.NewBaseEvent(),
			EvaluationID: eval.ID,
			TicketID:     ticket.ID,
			DealID:       eval.DealID,
			StateID:      blocking.ID,
			Reason:       blocking.Name,
			Alerts:       alerts,
		})
	}
}

func (s *Service) persist(ctx context.Context, eval *repository.Evaluation) {
	if s.deps.Store == nil {
		return
	}
	if err := s.deps.Store.Save(ctx, eval); err != nil {
		s.deps.Logger.Error("evaluation persist failed", "ticket", eval.TicketID, "error", err)
	}
}

func (s *Service) publishCompleted(ctx context.Context, eval *repository.Evaluation) {
	if s.deps.Bus == nil {
		return
	}
	s.deps.Bus.Publish(ctx, events.EvaluationCompleted{
		BaseEvent:    events.NewBaseEvent(),
		EvaluationID: eval.ID,
		TicketID:     eval.TicketID,
		DealID:       eval.DealID,
		StateID:      eval.StateID,
		Severity:     eval.Severity,
		AlertCount:   len(eval.Alerts),
	})
}

func (s *Service) note(ctx context.Context, ticketID, note string) {
	if err := s.deps.Desk.AddInternalNote(ctx, ticketID, note); err != nil {
		s.deps.Logger.Error("internal note failed", "ticket", ticketID, "error", err)
	}
}

// sessionPreference returns the session choice just written (or blocked)
// so the confirmation reply can name it.
func sessionPreference(result *domain.CRMUpdateResult) string {
	if result == nil {
		return ""
	}
	return result.Applied[domain.FieldPreferenceHoraire]
}

func escalationNote(blocking *domain.DetectedState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Traitement automatique suspendu : %s.\n", blocking.Name)
	for _, alert := range blocking.Alerts {
		fmt.Fprintf(&b, "- %s\n", alert.Message)
	}
	b.WriteString("Une intervention manuelle est nécessaire.")
	return b.String()
}

func validationNote(v *domain.ValidationResult) string {
	var b strings.Builder
	b.WriteString("Brouillon rejeté par la validation, reprise manuelle nécessaire.\n")
	for _, issue := range v.Errors {
		fmt.Fprintf(&b, "- [%s] %s\n", issue.Type, issue.Message)
	}
	return b.String()
}
