// Package respcheck validates a drafted candidate reply before it is sent.
// Seven deterministic checks run in a fixed order; errors make the draft
// unsendable, warnings are surfaced to the reviewer but do not block.
package respcheck

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"examdesk_backend/internal/stateengine/crmupdate"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/templates"
	"examdesk_backend/platform/logger"

	"github.com/nyaruka/phonenumbers"
)

// Check names recorded in ValidationResult.ChecksPassed.
const (
	CheckForbiddenTerms      = "forbidden_terms"
	CheckRequiredBlocks      = "required_blocks"
	CheckForbiddenBlocks     = "forbidden_blocks"
	CheckDateCoherence       = "date_coherence"
	CheckIdentifierCoherence = "identifier_coherence"
	CheckAmountCoherence     = "amount_coherence"
	CheckStructure           = "structure"
)

// forbiddenOfferAmount is the internal promotional price that must never
// leak into a candidate-facing message.
const forbiddenOfferAmount = 20.0

// Draft length bounds, in runes.
const (
	minDraftLength = 100
	maxDraftLength = 4000
)

// Internal jargon, tooling names and literal pricing references that must
// never appear in a reply. Matched whole-word on folded text. Deployment
// adds its internal site names here.
var forbiddenTermRes = []*regexp.Regexp{
	regexp.MustCompile(`\bzoho\b`),
	regexp.MustCompile(`\bevalbox\b`),
	regexp.MustCompile(`\bscraping\b`),
	regexp.MustCompile(`\bselenium\b`),
	regexp.MustCompile(`\bbackoffice\b`),
	regexp.MustCompile(`\bn8n\b`),
	regexp.MustCompile(`\bwebhook\b`),
	regexp.MustCompile(`\bprompt\b`),
	regexp.MustCompile(`\bllm\b`),
	regexp.MustCompile(`\bchatgpt\b`),
	regexp.MustCompile(`\boffre interne\b`),
	regexp.MustCompile(`\btarif interne\b`),
	regexp.MustCompile(`\bvingt euros\b`),
}

// blockPatterns maps each catalog content-block name to the pattern that
// detects its presence. Patterns run against the folded draft; the dotted
// classes absorb both ASCII and typographic apostrophes.
var blockPatterns = map[string]*regexp.Regexp{
	"salutation":        regexp.MustCompile(`\b(bonjour|bonsoir|madame|monsieur)\b`),
	"signature":         regexp.MustCompile(`(cordialement|bien a vous|bonne journee|l.equipe)`),
	"identifiants":      regexp.MustCompile(`\b(identifiants?|mot de passe|login)\b`),
	"avertissement_spam": regexp.MustCompile(`(spam|courriers? indesirables?)`),
	"dates_proposees":   regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`),
	"appel_action":      regexp.MustCompile(`(merci de|veuillez|nous vous invitons|n.hesitez pas)`),
	"lien_plateforme":   regexp.MustCompile(`https?://|\bplateforme\b`),
	"confirmation_choix": regexp.MustCompile(`(confirmation|confirmons|bien enregistre|bien note)`),
}

var (
	greetingRe    = regexp.MustCompile(`^\s*(bonjour|bonsoir|madame|monsieur|cher)\b`)
	signoffRe     = regexp.MustCompile(`(cordialement|bien a vous|bonne journee|l.equipe)`)
	placeholderRe = regexp.MustCompile(`\{\{[^{}]*\}\}|\[\[[^\[\]]*\]\]`)
	emailRe       = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phoneRe       = regexp.MustCompile(`(?:\+33|0)[1-9](?:[ .\-]?\d{2}){4}`)
	amountRe      = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)\s*(?:€|euros?\b|eur\b)`)
)

// Expected carries the ground truth a draft is checked against.
type Expected struct {
	// ProposedDates are the exam dates offered to this candidate.
	ProposedDates []domain.ProposedDate
	// AllowedAmounts are the prices that may legitimately be quoted.
	AllowedAmounts []float64
	// CandidateEmail and PortalLogin are the identifiers a credentials
	// message may contain. CandidatePhone is the number on file.
	CandidateEmail string
	PortalLogin    string
	CandidatePhone string
	// TemplateUsed is the template the draft was rendered from; an
	// override template relaxes the required-block check.
	TemplateUsed string
	// Today anchors the past-date check. Zero disables it.
	Today time.Time
}

// Validator runs the response checks. Stateless, safe for concurrent use.
type Validator struct {
	log *logger.Logger
}

// New creates a validator.
func New(log *logger.Logger) *Validator {
	return &Validator{log: log}
}

// Validate runs all seven checks against the draft and returns every
// finding. The draft is valid exactly when no check produced an error.
func (v *Validator) Validate(state *domain.DetectedState, draft string, exp Expected) *domain.ValidationResult {
	result := &domain.ValidationResult{Valid: true}
	folded := crmupdate.Fold(draft)

	v.runCheck(result, CheckForbiddenTerms, func() { checkForbiddenTerms(result, folded) })
	v.runCheck(result, CheckRequiredBlocks, func() { checkRequiredBlocks(result, state, folded, exp) })
	v.runCheck(result, CheckForbiddenBlocks, func() { checkForbiddenBlocks(result, state, folded) })
	v.runCheck(result, CheckDateCoherence, func() { checkDateCoherence(result, state, draft, exp) })
	v.runCheck(result, CheckIdentifierCoherence, func() { checkIdentifierCoherence(result, folded, draft, exp) })
	v.runCheck(result, CheckAmountCoherence, func() { checkAmountCoherence(result, folded, exp) })
	v.runCheck(result, CheckStructure, func() { checkStructure(result, draft, folded) })

	if v.log != nil && !result.Valid {
		v.log.Warn("draft rejected",
			"errors", len(result.Errors),
			"warnings", len(result.Warnings),
		)
	}
	return result
}

// runCheck records the check as passed when it added no finding.
func (v *Validator) runCheck(result *domain.ValidationResult, name string, fn func()) {
	before := len(result.Errors) + len(result.Warnings)
	fn()
	if len(result.Errors)+len(result.Warnings) == before {
		result.ChecksPassed = append(result.ChecksPassed, name)
	}
}

// Check 1: internal vocabulary must never leak.
func checkForbiddenTerms(result *domain.ValidationResult, folded string) {
	for _, re := range forbiddenTermRes {
		if term := re.FindString(folded); term != "" {
			result.AddError(domain.IssueForbiddenTerm,
				fmt.Sprintf("le brouillon contient le terme interne %q", term))
		}
	}
}

// Check 2: every block the state requires must be present. Skipped when an
// override template was used or the resolved intent calls for one, since
// the state's declared blocks no longer describe the right reply.
func checkRequiredBlocks(result *domain.ValidationResult, state *domain.DetectedState, folded string, exp Expected) {
	if state == nil {
		return
	}
	if templates.IsOverride(exp.TemplateUsed) {
		return
	}
	if templates.IsOverrideIntent(state.ResolvedIntent) {
		return
	}
	if ctx := state.Context; ctx != nil {
		for _, intent := range templates.OverrideIntents {
			if ctx.HasIntent(intent) {
				return
			}
		}
	}

	for _, block := range state.Response.BlocksRequired {
		re, known := blockPatterns[block]
		if !known {
			result.AddWarning(domain.IssueMissingBlock,
				fmt.Sprintf("bloc requis inconnu du validateur: %q", block))
			continue
		}
		if !re.MatchString(folded) {
			result.AddError(domain.IssueMissingBlock,
				fmt.Sprintf("bloc requis absent du brouillon: %q", block))
		}
	}
}

// Check 3: blocks the state forbids must be absent.
func checkForbiddenBlocks(result *domain.ValidationResult, state *domain.DetectedState, folded string) {
	if state == nil {
		return
	}
	for _, block := range state.Response.BlocksForbidden {
		re, known := blockPatterns[block]
		if !known {
			continue
		}
		if re.MatchString(folded) {
			result.AddError(domain.IssueForbiddenBlock,
				fmt.Sprintf("bloc interdit présent dans le brouillon: %q", block))
		}
	}
}

// Check 4: every date the draft mentions must be one the candidate was
// offered or one already attached to the dossier, and none may be in the
// past.
func checkDateCoherence(result *domain.ValidationResult, state *domain.DetectedState, draft string, exp Expected) {
	mentioned := crmupdate.ExtractDates(draft)
	if len(mentioned) == 0 {
		return
	}

	sanctioned := make(map[string]bool, len(exp.ProposedDates))
	for _, p := range exp.ProposedDates {
		sanctioned[p.Date] = true
	}
	if state != nil && state.Context != nil {
		for _, d := range state.Context.SanctionedDates() {
			sanctioned[d.ISO()] = true
		}
	}

	for _, iso := range mentioned {
		if !sanctioned[iso] {
			result.AddWarning(domain.IssueUnknownDate,
				fmt.Sprintf("la date %s ne correspond à aucune date proposée ou connue du dossier", iso))
		}
		if !exp.Today.IsZero() && domain.ParseDate(iso).BeforeTime(exp.Today) {
			result.AddWarning(domain.IssuePastDate,
				fmt.Sprintf("la date %s est déjà passée", iso))
		}
	}
}

// Check 5: when the draft shares credentials, any embedded email address
// must be one of the candidate's own identifiers. Mismatched identifiers and
// dubious phone numbers are warnings, surfaced without blocking the send. A
// contact address outside a credential line is left alone.
func checkIdentifierCoherence(result *domain.ValidationResult, folded, draft string, exp Expected) {
	known := map[string]bool{}
	if exp.CandidateEmail != "" {
		known[crmupdate.Fold(exp.CandidateEmail)] = true
	}
	if exp.PortalLogin != "" {
		known[crmupdate.Fold(exp.PortalLogin)] = true
	}
	if len(known) > 0 && blockPatterns["identifiants"].MatchString(folded) {
		for _, email := range emailRe.FindAllString(folded, -1) {
			if !known[email] {
				result.AddWarning(domain.IssueIdentifierMismatch,
					fmt.Sprintf("l'adresse %s n'appartient pas à ce candidat", email))
			}
		}
	}

	if exp.CandidatePhone == "" {
		return
	}
	want, err := phonenumbers.Parse(exp.CandidatePhone, "FR")
	if err != nil {
		return
	}
	wantE164 := phonenumbers.Format(want, phonenumbers.E164)
	for _, raw := range phoneRe.FindAllString(draft, -1) {
		num, err := phonenumbers.Parse(raw, "FR")
		if err != nil {
			continue
		}
		if phonenumbers.Format(num, phonenumbers.E164) != wantE164 {
			result.AddWarning(domain.IssuePhoneMismatch,
				fmt.Sprintf("le numéro %s ne correspond pas au numéro du dossier", raw))
		}
	}
}

// Check 6: the internal promotional price must never be quoted; other
// amounts must come from the allow-list.
func checkAmountCoherence(result *domain.ValidationResult, folded string, exp Expected) {
	for _, m := range amountRe.FindAllStringSubmatch(folded, -1) {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		if math.Abs(value-forbiddenOfferAmount) < 0.01 {
			result.AddError(domain.IssueForbiddenAmount,
				fmt.Sprintf("le montant %s correspond à l'offre interne et ne doit jamais être cité", m[0]))
			continue
		}
		if !amountAllowed(value, exp.AllowedAmounts) {
			result.AddWarning(domain.IssueUnknownAmount,
				fmt.Sprintf("le montant %s ne figure pas dans les montants autorisés", m[0]))
		}
	}
}

func amountAllowed(value float64, allowed []float64) bool {
	for _, a := range allowed {
		if math.Abs(value-a) < 0.01 {
			return true
		}
	}
	return false
}

// Check 7: structural sanity — length bounds, opening greeting, closing
// sign-off, no surviving template placeholder.
func checkStructure(result *domain.ValidationResult, draft, folded string) {
	length := utf8.RuneCountInString(draft)
	if length < minDraftLength || length > maxDraftLength {
		result.AddWarning(domain.IssueLengthOutOfBounds,
			fmt.Sprintf("longueur du brouillon hors bornes: %d caractères", length))
	}

	if !greetingRe.MatchString(folded) {
		result.AddWarning(domain.IssueMissingGreeting, "le brouillon ne commence pas par une salutation")
	}

	tail := folded
	if runes := []rune(folded); len(runes) > 200 {
		tail = string(runes[len(runes)-200:])
	}
	if !signoffRe.MatchString(tail) {
		result.AddWarning(domain.IssueMissingSignoff, "le brouillon ne se termine pas par une formule de clôture")
	}

	if ph := placeholderRe.FindString(draft); ph != "" {
		result.AddError(domain.IssueUnresolvedPlaceholder,
			fmt.Sprintf("le brouillon contient un marqueur non résolu: %s", ph))
	}
}
