package agent

import (
	"context"
	"strings"

	"examdesk_backend/internal/tickets/ports"
)

// StaticRenderer fills template placeholders deterministically, without a
// model. It backs deployments where the drafting agent is disabled; a
// placeholder whose value is missing stays in the text, so the response
// validator routes the draft to a human instead of sending it incomplete.
type StaticRenderer struct{}

var _ ports.Renderer = (*StaticRenderer)(nil)

// Render substitutes the known placeholders of the template body.
func (StaticRenderer) Render(_ context.Context, req ports.RenderRequest) (string, error) {
	values := map[string]string{
		"prenom":       firstName(req.CandidateName),
		"session":      req.SessionType,
		"login":        req.Login,
		"mot_de_passe": req.Password,
		"date_examen":  req.ExamDate,
	}
	if len(req.ProposedDates) > 0 {
		values["dates_proposees"] = formatProposedDates(req.ProposedDates)
	}

	pairs := make([]string, 0, 2*len(values))
	for name, value := range values {
		if value == "" {
			continue
		}
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(req.TemplateBody), nil
}
