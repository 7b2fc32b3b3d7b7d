package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/stateengine/crmupdate"
	"examdesk_backend/internal/stateengine/detector"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/respcheck"
	"examdesk_backend/internal/stateengine/templates"
	"examdesk_backend/internal/tickets/agent"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/internal/tickets/repository"
	"examdesk_backend/platform/logger"
	"examdesk_backend/platform/validator"
)

var testToday = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// ---- fakes ----

type fakeDesk struct {
	ticket    *ports.Ticket
	ticketErr error
	thread    []domain.ThreadMessage
	drafts    []string
	notes     []string
}

func (f *fakeDesk) GetTicket(_ context.Context, _ string) (*ports.Ticket, error) {
	return f.ticket, f.ticketErr
}
func (f *fakeDesk) GetThread(_ context.Context, _ string) ([]domain.ThreadMessage, error) {
	return f.thread, nil
}
func (f *fakeDesk) CreateDraft(_ context.Context, _, body string) error {
	f.drafts = append(f.drafts, body)
	return nil
}
func (f *fakeDesk) AddInternalNote(_ context.Context, _, note string) error {
	f.notes = append(f.notes, note)
	return nil
}

type fakeCRM struct {
	deal     domain.DealRecord
	sessions []domain.ProposedSession
	dates    []domain.ProposedDate
	updates  map[string]string
}

func (f *fakeCRM) GetDeal(_ context.Context, _ string) (*domain.DealRecord, error) {
	deal := f.deal
	return &deal, nil
}
func (f *fakeCRM) GetProposedSessions(_ context.Context, _ string) ([]domain.ProposedSession, error) {
	return f.sessions, nil
}
func (f *fakeCRM) GetProposedDates(_ context.Context, _ string) ([]domain.ProposedDate, error) {
	return f.dates, nil
}
func (f *fakeCRM) UpdateDeal(_ context.Context, _ string, fields map[string]string) error {
	f.updates = fields
	return nil
}

type fakePortal struct {
	record domain.PortalRecord
	err    error
}

func (f *fakePortal) GetPortalRecord(_ context.Context, _ string) (*domain.PortalRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record := f.record
	return &record, nil
}

type fakeTriager struct {
	result domain.TriageResult
}

func (f *fakeTriager) Triage(_ context.Context, _ *ports.Ticket, _ []domain.ThreadMessage) (domain.TriageResult, error) {
	return f.result, nil
}

type fakeStore struct {
	saved []*repository.Evaluation
}

func (f *fakeStore) Save(_ context.Context, e *repository.Evaluation) error {
	f.saved = append(f.saved, e)
	return nil
}

type engineConfig struct {
	writeEnabled bool
}

func (c engineConfig) GetDraftTimeout() time.Duration { return 30 * time.Second }
func (c engineConfig) GetCRMWriteEnabled() bool       { return c.writeEnabled }

type pipeline struct {
	svc    *Service
	desk   *fakeDesk
	crm    *fakeCRM
	portal *fakePortal
	store  *fakeStore
}

func newPipeline(t *testing.T, desk *fakeDesk, crm *fakeCRM, portal *fakePortal, triager ports.Triager) *pipeline {
	t.Helper()
	log := logger.New("development")
	cat, err := catalog.LoadDefault(validator.New())
	if err != nil {
		t.Fatalf("LoadDefault(): %v", err)
	}
	store := &fakeStore{}
	svc := New(Deps{
		Detector:  detector.New(cat, log),
		Updater:   crmupdate.New(log),
		Validator: respcheck.New(log),
		Store:     store,
		Desk:      desk,
		CRM:       crm,
		Portal:    portal,
		Triager:   triager,
		Renderer:  agent.StaticRenderer{},
		Config:    engineConfig{writeEnabled: true},
		Logger:    log,
		Clock:     func() time.Time { return testToday },
	})
	return &pipeline{svc: svc, desk: desk, crm: crm, portal: portal, store: store}
}

func baseTicket() *ports.Ticket {
	return &ports.Ticket{
		ID:             "tk-1",
		Subject:        "Question sur mon examen",
		Message:        "Merci pour votre aide.",
		DealID:         "deal-1",
		CandidateName:  "Karim Benali",
		CandidateEmail: "karim.benali@example.fr",
	}
}

// ---- tests ----

func TestProcessConvocationDraftsValidReply(t *testing.T) {
	desk := &fakeDesk{ticket: baseTicket()}
	crm := &fakeCRM{deal: domain.DealRecord{
		ID:      "deal-1",
		Evalbox: domain.EvalboxConvocRecue,
		ExamDate: domain.DateLookup{
			Date:        "2025-04-10",
			ClotureDate: "2025-03-25",
		},
	}}
	portal := &fakePortal{record: domain.PortalRecord{AccountExists: true, ConnectionOK: true}}

	p := newPipeline(t, desk, crm, portal, nil)
	outcome, err := p.svc.Process(context.Background(), "tk-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outcome.Template != templates.TplConvocationRecue {
		t.Errorf("template = %q, want %q", outcome.Template, templates.TplConvocationRecue)
	}
	if outcome.Validation == nil || !outcome.Validation.Valid {
		t.Fatalf("expected a valid draft, got %+v", outcome.Validation)
	}
	if len(desk.drafts) != 1 {
		t.Fatalf("drafts attached = %d, want 1", len(desk.drafts))
	}
	if !strings.Contains(desk.drafts[0], "Bonjour Karim,") {
		t.Errorf("draft not personalised: %q", desk.drafts[0])
	}
	if len(p.store.saved) != 1 || p.store.saved[0].Escalated {
		t.Errorf("expected one non-escalated evaluation, got %+v", p.store.saved)
	}
}

func TestProcessPortalFailureEscalates(t *testing.T) {
	desk := &fakeDesk{ticket: baseTicket()}
	crm := &fakeCRM{deal: domain.DealRecord{ID: "deal-1", Evalbox: domain.EvalboxValideCMA}}
	portal := &fakePortal{err: errors.New("connection refused")}

	p := newPipeline(t, desk, crm, portal, nil)
	outcome, err := p.svc.Process(context.Background(), "tk-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !outcome.Detected.HasBlocking() {
		t.Fatal("portal failure must surface as a blocking state")
	}
	if outcome.Detected.Blocking.ID != "extraction_echec" {
		t.Errorf("blocking = %q, want extraction_echec", outcome.Detected.Blocking.ID)
	}
	if len(desk.drafts) != 0 {
		t.Errorf("no draft may be attached on escalation, got %d", len(desk.drafts))
	}
	if len(desk.notes) == 0 || !strings.Contains(desk.notes[0], "Traitement automatique suspendu") {
		t.Errorf("missing escalation note, got %v", desk.notes)
	}
	if len(p.store.saved) != 1 || !p.store.saved[0].Escalated {
		t.Errorf("expected one escalated evaluation, got %+v", p.store.saved)
	}
}

func TestProcessSessionChoiceWritesCRM(t *testing.T) {
	ticket := baseTicket()
	ticket.Message = "Je préfère la session du soir, merci."
	desk := &fakeDesk{ticket: ticket}
	crm := &fakeCRM{
		deal: domain.DealRecord{ID: "deal-1", Evalbox: domain.EvalboxDossierRecu},
		sessions: []domain.ProposedSession{
			{ID: "s-jour", SessionType: domain.SessionJour, Date: "2025-04-10"},
			{ID: "s-soir", SessionType: domain.SessionSoir, Date: "2025-04-10"},
		},
	}
	portal := &fakePortal{record: domain.PortalRecord{AccountExists: true, ConnectionOK: true}}
	triager := &fakeTriager{result: domain.TriageResult{
		Action:        domain.ActionRespond,
		PrimaryIntent: "choix_session",
	}}

	p := newPipeline(t, desk, crm, portal, triager)
	outcome, err := p.svc.Process(context.Background(), "tk-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outcome.Template != templates.TplConfirmationSession {
		t.Errorf("template = %q, want %q", outcome.Template, templates.TplConfirmationSession)
	}
	if crm.updates[domain.FieldPreferenceHoraire] != domain.SessionSoir {
		t.Errorf("Preference_horaire = %q, want %q", crm.updates[domain.FieldPreferenceHoraire], domain.SessionSoir)
	}
	if crm.updates[domain.FieldSession] != "s-soir" {
		t.Errorf("Session = %q, want s-soir", crm.updates[domain.FieldSession])
	}
	if len(desk.drafts) != 1 || !strings.Contains(desk.drafts[0], "session de soir") {
		t.Errorf("confirmation draft must name the chosen session, got %v", desk.drafts)
	}
}

func TestProcessBlockedDateUpdateLeavesNote(t *testing.T) {
	ticket := baseTicket()
	ticket.Message = "Je souhaite décaler mon examen au 12/05/2025."
	desk := &fakeDesk{ticket: ticket}
	crm := &fakeCRM{
		deal: domain.DealRecord{
			ID:      "deal-1",
			Evalbox: domain.EvalboxValideCMA,
			ExamDate: domain.DateLookup{
				Date:        "2025-04-10",
				ClotureDate: "2025-03-01", // closed: the date can no longer move
			},
		},
		dates: []domain.ProposedDate{{ID: "pd-1", Date: "2025-05-12"}},
	}
	portal := &fakePortal{record: domain.PortalRecord{AccountExists: true, ConnectionOK: true}}
	triager := &fakeTriager{result: domain.TriageResult{
		Action:        domain.ActionRespond,
		PrimaryIntent: "demande_report",
	}}

	p := newPipeline(t, desk, crm, portal, triager)
	outcome, err := p.svc.Process(context.Background(), "tk-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outcome.CRMResult == nil {
		t.Fatal("expected a CRM update result")
	}
	if _, blocked := outcome.CRMResult.Blocked[domain.FieldDateExamen]; !blocked {
		t.Errorf("Date_Examen must be blocked by rule B1, got %+v", outcome.CRMResult)
	}
	if crm.updates[domain.FieldDateExamen] != "" {
		t.Errorf("blocked update must never reach the CRM, got %v", crm.updates)
	}
	var found bool
	for _, note := range desk.notes {
		if strings.Contains(note, "Mise à jour CRM bloquée") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing blocked-update note, got %v", desk.notes)
	}
	// The reply itself is the blocked-report override, not the date list.
	if outcome.Template != templates.TplReportBloque {
		t.Errorf("template = %q, want %q", outcome.Template, templates.TplReportBloque)
	}
}

func TestProcessTicketFetchFailureIsAnError(t *testing.T) {
	desk := &fakeDesk{ticketErr: errors.New("helpdesk 500")}
	p := newPipeline(t, desk, &fakeCRM{}, &fakePortal{}, nil)

	if _, err := p.svc.Process(context.Background(), "tk-404"); err == nil {
		t.Fatal("expected an error when the ticket cannot be fetched")
	}
	if len(p.store.saved) != 0 {
		t.Errorf("nothing must be persisted without a ticket, got %+v", p.store.saved)
	}
}

func TestSimulateIsSideEffectFree(t *testing.T) {
	desk := &fakeDesk{ticket: baseTicket()}
	crm := &fakeCRM{}
	p := newPipeline(t, desk, crm, &fakePortal{}, nil)

	result := p.svc.Simulate(SimulateRequest{
		Deal: domain.DealRecord{
			ID:      "deal-1",
			Evalbox: domain.EvalboxConvocRecue,
			ExamDate: domain.DateLookup{
				Date:        "2025-04-10",
				ClotureDate: "2025-03-25",
			},
		},
		Portal: domain.PortalRecord{AccountExists: true, ConnectionOK: true},
		Today:  "2025-03-15",
	})

	if result.Template != templates.TplConvocationRecue {
		t.Errorf("template = %q, want %q", result.Template, templates.TplConvocationRecue)
	}
	if len(desk.drafts) != 0 || len(desk.notes) != 0 || crm.updates != nil {
		t.Error("simulate must not touch the helpdesk or the CRM")
	}
	if len(p.store.saved) != 0 {
		t.Error("simulate must not persist evaluations")
	}
}
