package detector

import (
	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/platform/logger"
)

// Detector matches evaluation contexts against a compiled catalog. It holds
// no mutable state, so one instance may serve concurrent evaluations.
type Detector struct {
	catalog *catalog.Catalog
	log     *logger.Logger
}

// New creates a detector over a loaded catalog.
func New(cat *catalog.Catalog, log *logger.Logger) *Detector {
	return &Detector{catalog: cat, log: log}
}

// DetectAll runs one full detection pass: build the context, collect
// ancillary alerts, then walk the catalog in priority order. The first
// matching BLOCKING entry wins and stops further BLOCKING matching, while
// WARNING and INFO entries keep being collected exhaustively — alerts and
// warnings are informational overlays, not control flow. When no entry at
// all matches (a catalog without a fallback), a synthetic GENERAL info
// state is returned so the caller always has a primary state.
func (d *Detector) DetectAll(in Inputs) *domain.DetectedStates {
	ctx := BuildContext(in)
	alerts := CollectAlerts(ctx)

	result := &domain.DetectedStates{}

	for _, state := range d.catalog.States {
		if state.Severity == domain.SeverityBlocking && result.Blocking != nil {
			continue
		}
		if !state.Matcher.Match(ctx) {
			continue
		}

		detected := newDetected(state.StateDefinition, ctx, alerts)
		result.All = append(result.All, detected)

		switch state.Severity {
		case domain.SeverityBlocking:
			result.Blocking = detected
		case domain.SeverityWarning:
			result.Warnings = append(result.Warnings, detected)
		case domain.SeverityInfo:
			result.Infos = append(result.Infos, detected)
		}
	}

	if len(result.All) == 0 {
		general := newDetected(generalState, ctx, alerts)
		result.All = append(result.All, general)
		result.Infos = append(result.Infos, general)
	}

	if primary := result.Primary(); primary != nil {
		d.log.Debug("state detection complete",
			"primary", primary.ID,
			"severity", string(primary.Severity),
			"warnings", len(result.Warnings),
			"alerts", len(alerts),
		)
	}

	return result
}

func newDetected(def domain.StateDefinition, ctx *domain.EvaluationContext, alerts []domain.Alert) *domain.DetectedState {
	return &domain.DetectedState{
		StateDefinition: def,
		Context:         ctx,
		Alerts:          alerts,
		ResolvedIntent:  ctx.PrimaryIntent,
	}
}

// generalState backs detection when the catalog has no fallback entry.
var generalState = domain.StateDefinition{
	ID:             "general",
	Name:           "Réponse générale",
	Priority:       999,
	Category:       "general",
	Severity:       domain.SeverityInfo,
	WorkflowAction: domain.ActionRespond,
	Response: domain.ResponseConfig{
		Template:       "reponse_generale",
		BlocksRequired: []string{"salutation", "signature"},
	},
}
