package agent

import (
	"context"
	"strings"
	"testing"

	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/templates"
	"examdesk_backend/internal/tickets/ports"
)

func TestStaticRendererFillsPlaceholders(t *testing.T) {
	body, ok := templates.Body(templates.TplPropositionDates)
	if !ok {
		t.Fatal("missing template body")
	}

	out, err := StaticRenderer{}.Render(context.Background(), ports.RenderRequest{
		TemplateName:  templates.TplPropositionDates,
		TemplateBody:  body,
		CandidateName: "Karim Benali",
		ProposedDates: []domain.ProposedDate{
			{ID: "d1", Date: "2025-05-12"},
			{ID: "d2", Date: "2025-05-19"},
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Bonjour Karim,") {
		t.Errorf("missing salutation with first name: %q", out)
	}
	if !strings.Contains(out, "12/05/2025") || !strings.Contains(out, "19/05/2025") {
		t.Errorf("proposed dates not rendered in DD/MM/YYYY: %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("unresolved placeholder left in output: %q", out)
	}
}

func TestStaticRendererKeepsUnresolvablePlaceholders(t *testing.T) {
	body, ok := templates.Body(templates.TplEnvoiIdentifiants)
	if !ok {
		t.Fatal("missing template body")
	}

	out, err := StaticRenderer{}.Render(context.Background(), ports.RenderRequest{
		TemplateName:  templates.TplEnvoiIdentifiants,
		TemplateBody:  body,
		CandidateName: "Sonia Marchand",
		Login:         "sonia.marchand@example.fr",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "sonia.marchand@example.fr") {
		t.Errorf("login not substituted: %q", out)
	}
	// No password supplied: the placeholder must survive so validation
	// rejects the draft instead of sending it incomplete.
	if !strings.Contains(out, "{{mot_de_passe}}") {
		t.Errorf("missing-value placeholder was dropped: %q", out)
	}
}

func TestParseTriageOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "clean json",
			output: `{"action":"respond","primaryIntent":"demande_report","secondaryIntents":["choix_session"]}`,
			want:   "demande_report",
		},
		{
			name:   "json wrapped in prose and fences",
			output: "Voici la classification :\n```json\n{\"action\":\"respond\",\"primaryIntent\":\"choix_date\"}\n```",
			want:   "choix_date",
		},
		{
			name:    "no json at all",
			output:  "je ne peux pas classifier ce message",
			wantErr: true,
		},
		{
			name:    "missing primary intent",
			output:  `{"action":"respond"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTriageOutput(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTriageOutput: %v", err)
			}
			if got.PrimaryIntent != tt.want {
				t.Errorf("primary intent = %q, want %q", got.PrimaryIntent, tt.want)
			}
		})
	}
}

func TestSanitizeUserInput(t *testing.T) {
	in := "ligne1\nligne2\ttab\x00\x1b[31mcontrol"
	out := sanitizeUserInput(in, 100)
	if strings.ContainsRune(out, '\x00') || strings.ContainsRune(out, '\x1b') {
		t.Errorf("control characters survived: %q", out)
	}
	if !strings.Contains(out, "ligne1\nligne2\ttab") {
		t.Errorf("newline or tab was stripped: %q", out)
	}

	long := strings.Repeat("a", 50)
	truncated := sanitizeUserInput(long, 10)
	if !strings.HasSuffix(truncated, "... [tronqué]") {
		t.Errorf("missing truncation marker: %q", truncated)
	}
}
