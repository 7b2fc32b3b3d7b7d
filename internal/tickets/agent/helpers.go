package agent

import (
	"fmt"
	"strings"
	"unicode"

	"examdesk_backend/internal/stateengine/domain"
)

const (
	maxMessageLength = 4000
	maxThreadLength  = 1500
	userDataBegin    = "<<<BEGIN_USER_DATA>>>"
	userDataEnd      = "<<<END_USER_DATA>>>"
)

// sanitizeUserInput removes control characters and truncates to max length
func sanitizeUserInput(s string, maxLen int) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	result := sb.String()
	if len(result) > maxLen {
		result = result[:maxLen] + "... [tronqué]"
	}
	return result
}

// wrapUserData wraps user-provided content with markers to isolate it from instructions
func wrapUserData(content string) string {
	return fmt.Sprintf("%s\n%s\n%s", userDataBegin, content, userDataEnd)
}

// extractJSON returns the first balanced JSON object in the model output,
// tolerating prose or code fences around it.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// formatProposedDates renders the offered dates as a French bullet list in
// DD/MM/YYYY, the only notation drafts are allowed to use for them.
func formatProposedDates(dates []domain.ProposedDate) string {
	if len(dates) == 0 {
		return "Aucune date disponible."
	}
	var b strings.Builder
	for _, d := range dates {
		text := d.Date
		if parsed := domain.ParseDate(d.Date); parsed.Known {
			text = parsed.French()
		}
		fmt.Fprintf(&b, "- %s\n", text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// firstName extracts the candidate's first name for the salutation.
func firstName(full string) string {
	fields := strings.Fields(strings.TrimSpace(full))
	if len(fields) == 0 {
		return "Madame, Monsieur"
	}
	return fields[0]
}

// formatThread flattens the recent conversation for the triage prompt,
// newest last. Older messages are dropped before truncation kicks in.
func formatThread(thread []domain.ThreadMessage) string {
	if len(thread) == 0 {
		return "Pas d'historique."
	}
	const keep = 6
	if len(thread) > keep {
		thread = thread[len(thread)-keep:]
	}
	var b strings.Builder
	for _, msg := range thread {
		who := "Candidat"
		if msg.Direction == "out" {
			who = "Support"
		}
		fmt.Fprintf(&b, "[%s] %s\n", who, sanitizeUserInput(msg.Text, maxThreadLength))
	}
	return strings.TrimRight(b.String(), "\n")
}
