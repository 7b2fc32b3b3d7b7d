package catalog

import (
	"strconv"

	"examdesk_backend/internal/stateengine/domain"
)

// Matcher is a pure predicate over the evaluation context. Matchers never
// mutate the context.
type Matcher interface {
	Match(ctx *domain.EvaluationContext) bool
}

// Detection methods understood by the compiler. The catalog document
// selects a matcher variant by name; compilation turns the stringly-typed
// document into one of the typed variants below.
const (
	methodFieldEquals = "field_equals"
	methodAllOf       = "all_of"
	methodCaseIn      = "case_in"
	methodIntent      = "intent_equals"
	methodFallback    = "fallback"
)

// fieldGetter reads one addressable context field as a canonical string.
// The second return value is false when the field is absent, which degrades
// the enclosing predicate to non-matching.
type fieldGetter func(ctx *domain.EvaluationContext) (string, bool)

// contextFields is the registry of fields a catalog rule may address.
// Booleans canonicalize to "true"/"false", the exam case to its number.
var contextFields = map[string]fieldGetter{
	"evalbox":                  func(c *domain.EvaluationContext) (string, bool) { return c.Deal.Evalbox, c.Deal.Evalbox != "" },
	"stage":                    func(c *domain.EvaluationContext) (string, bool) { return c.Deal.Stage, c.Deal.Stage != "" },
	"uber_case":                func(c *domain.EvaluationContext) (string, bool) { return string(c.UberCase), c.UberCase != "" },
	"exam_case":                func(c *domain.EvaluationContext) (string, bool) { return strconv.Itoa(int(c.ExamCase)), c.ExamCase != 0 },
	"cloture_passed":           boolField(func(c *domain.EvaluationContext) bool { return c.CloturePassed }),
	"date_examen_passed":       boolField(func(c *domain.EvaluationContext) bool { return c.DateExamenPassed }),
	"date_examen_future":       boolField(func(c *domain.EvaluationContext) bool { return c.DateExamenFuture }),
	"can_modify_exam_date":     boolField(func(c *domain.EvaluationContext) bool { return c.CanModifyExamDate }),
	"dates_proposed":           boolField(func(c *domain.EvaluationContext) bool { return c.Deal.DatesProposed }),
	"uber_offer":               boolField(func(c *domain.EvaluationContext) bool { return c.Deal.UberOffer }),
	"account_verified":         boolField(func(c *domain.EvaluationContext) bool { return c.Deal.AccountVerified }),
	"personal_account_payment": boolField(func(c *domain.EvaluationContext) bool { return c.Deal.PersonalAccountPayment }),
	"has_duplicate_offer":      boolField(func(c *domain.EvaluationContext) bool { return c.Linking.HasDuplicateOffer }),
	"needs_clarification":      boolField(func(c *domain.EvaluationContext) bool { return c.Linking.NeedsClarification }),
	"account_exists":           boolField(func(c *domain.EvaluationContext) bool { return c.Portal.AccountExists }),
	"connection_ok":            boolField(func(c *domain.EvaluationContext) bool { return c.Portal.ConnectionOK }),
	"extraction_failed":        boolField(func(c *domain.EvaluationContext) bool { return c.Portal.ExtractionFailed }),
	"force_majeure":            boolField(func(c *domain.EvaluationContext) bool { return c.ForceMajeure }),
	"dossier_status":           func(c *domain.EvaluationContext) (string, bool) { return c.Portal.DossierStatus, c.Portal.DossierStatus != "" },
	"primary_intent":           func(c *domain.EvaluationContext) (string, bool) { return c.PrimaryIntent, c.PrimaryIntent != "" },
}

func boolField(get func(*domain.EvaluationContext) bool) fieldGetter {
	return func(c *domain.EvaluationContext) (string, bool) {
		return strconv.FormatBool(get(c)), true
	}
}

// fieldEqualsMatcher matches when a single context field equals a value.
type fieldEqualsMatcher struct {
	get  fieldGetter
	want string
}

func (m fieldEqualsMatcher) Match(ctx *domain.EvaluationContext) bool {
	got, ok := m.get(ctx)
	return ok && got == m.want
}

// allOfMatcher is the conjunction of field predicates.
type allOfMatcher struct {
	subs []Matcher
}

func (m allOfMatcher) Match(ctx *domain.EvaluationContext) bool {
	for _, sub := range m.subs {
		if !sub.Match(ctx) {
			return false
		}
	}
	return len(m.subs) > 0
}

// caseInMatcher tests membership of a categorical field (uber_case,
// exam_case) in a value set.
type caseInMatcher struct {
	get  fieldGetter
	want map[string]bool
}

func (m caseInMatcher) Match(ctx *domain.EvaluationContext) bool {
	got, ok := m.get(ctx)
	return ok && m.want[got]
}

// intentMatcher matches the primary intent, and optionally the secondary
// intent list.
type intentMatcher struct {
	intent           string
	includeSecondary bool
}

func (m intentMatcher) Match(ctx *domain.EvaluationContext) bool {
	if m.includeSecondary {
		return ctx.HasIntent(m.intent)
	}
	return m.intent != "" && ctx.PrimaryIntent == m.intent
}

// fallbackMatcher always matches; it backs the catalog's default state.
type fallbackMatcher struct{}

func (fallbackMatcher) Match(*domain.EvaluationContext) bool { return true }

// neverMatcher is compiled in place of a malformed detection rule so the
// entry is ignored rather than raising at evaluation time.
type neverMatcher struct{}

func (neverMatcher) Match(*domain.EvaluationContext) bool { return false }
