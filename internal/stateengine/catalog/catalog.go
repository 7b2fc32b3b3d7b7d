// Package catalog loads and compiles the candidate-state catalog from its
// YAML document. The catalog is loaded once at startup, is immutable
// afterwards, and may be shared across concurrent evaluations. A
// structurally invalid document is a fatal configuration error; individual
// rules with an unknown detection method or field compile to a
// never-matching predicate and are reported as warnings.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/platform/validator"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var embedded []byte

// CompiledState is one catalog entry with its detection rule compiled to a
// typed matcher.
type CompiledState struct {
	domain.StateDefinition
	Matcher Matcher
}

// Catalog is the compiled, priority-ordered state catalog.
type Catalog struct {
	Version  int
	States   []*CompiledState
	Warnings []string

	byID map[string]*CompiledState
}

// document mirrors the YAML schema.
type document struct {
	Version int     `yaml:"version" validate:"required,min=1"`
	States  []entry `yaml:"states" validate:"required,min=1,dive"`
}

type entry struct {
	ID         string                `yaml:"id" validate:"required"`
	Name       string                `yaml:"name" validate:"required"`
	Priority   int                   `yaml:"priority" validate:"required,min=1"`
	Category   string                `yaml:"category" validate:"required"`
	Severity   string                `yaml:"severity" validate:"required,oneof=BLOCKING WARNING INFO"`
	Detection  detection             `yaml:"detection"`
	Workflow   workflow              `yaml:"workflow"`
	Response   domain.ResponseConfig `yaml:"response"`
	CRMUpdates crmUpdates            `yaml:"crm_updates"`
}

type detection struct {
	Method           string      `yaml:"method"`
	Field            string      `yaml:"field"`
	Condition        condition   `yaml:"condition"`
	Conditions       []condition `yaml:"conditions"`
	Values           []string    `yaml:"values"`
	Intent           string      `yaml:"intent"`
	IncludeSecondary bool        `yaml:"include_secondary"`
}

type condition struct {
	Field  string `yaml:"field"`
	Equals string `yaml:"equals"`
}

type workflow struct {
	Action string `yaml:"action" validate:"omitempty,oneof=respond escalate wait close"`
}

type crmUpdates struct {
	Method string `yaml:"method" validate:"omitempty,oneof=session_choice date_choice"`
}

// LoadDefault compiles the embedded catalog shipped with the binary.
func LoadDefault(val *validator.Validator) (*Catalog, error) {
	return Load(embedded, val)
}

// LoadFile compiles a catalog document from disk.
func LoadFile(path string, val *validator.Validator) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data, val)
}

// Load parses, validates and compiles a catalog document. Any structural
// problem (bad YAML, missing required fields, duplicate IDs, empty state
// list) is returned as an error so startup aborts rather than running with
// a partial catalog.
func Load(data []byte, val *validator.Validator) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := val.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	cat := &Catalog{
		Version: doc.Version,
		byID:    make(map[string]*CompiledState, len(doc.States)),
	}

	for _, e := range doc.States {
		if _, dup := cat.byID[e.ID]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate state id %q", e.ID)
		}

		matcher, warn := compileDetection(e.ID, e.Detection)
		if warn != "" {
			cat.Warnings = append(cat.Warnings, warn)
		}

		action := e.Workflow.Action
		if action == "" {
			action = domain.ActionRespond
		}

		state := &CompiledState{
			StateDefinition: domain.StateDefinition{
				ID:             e.ID,
				Name:           e.Name,
				Priority:       e.Priority,
				Category:       e.Category,
				Severity:       domain.Severity(e.Severity),
				WorkflowAction: action,
				Response:       e.Response,
				UpdateMethod:   domain.UpdateMethod(e.CRMUpdates.Method),
			},
			Matcher: matcher,
		}
		cat.States = append(cat.States, state)
		cat.byID[e.ID] = state
	}

	sort.SliceStable(cat.States, func(i, j int) bool {
		return cat.States[i].Priority < cat.States[j].Priority
	})

	return cat, nil
}

// ByID returns the compiled state with the given ID, or nil.
func (c *Catalog) ByID(id string) *CompiledState {
	return c.byID[id]
}

// compileDetection turns one detection clause into a typed matcher. Unknown
// methods or field names yield a neverMatcher plus a warning instead of an
// error, so one stale rule cannot take the whole catalog down.
func compileDetection(stateID string, d detection) (Matcher, string) {
	switch d.Method {
	case methodFieldEquals:
		return compileCondition(stateID, d.Condition)

	case methodAllOf:
		if len(d.Conditions) == 0 {
			return neverMatcher{}, fmt.Sprintf("state %q: all_of with no conditions", stateID)
		}
		subs := make([]Matcher, 0, len(d.Conditions))
		for _, c := range d.Conditions {
			m, warn := compileCondition(stateID, c)
			if warn != "" {
				return neverMatcher{}, warn
			}
			subs = append(subs, m)
		}
		return allOfMatcher{subs: subs}, ""

	case methodCaseIn:
		get, ok := contextFields[d.Field]
		if !ok {
			return neverMatcher{}, fmt.Sprintf("state %q: unknown context field %q", stateID, d.Field)
		}
		if len(d.Values) == 0 {
			return neverMatcher{}, fmt.Sprintf("state %q: case_in with no values", stateID)
		}
		want := make(map[string]bool, len(d.Values))
		for _, v := range d.Values {
			want[v] = true
		}
		return caseInMatcher{get: get, want: want}, ""

	case methodIntent:
		if d.Intent == "" {
			return neverMatcher{}, fmt.Sprintf("state %q: intent_equals without intent", stateID)
		}
		return intentMatcher{intent: d.Intent, includeSecondary: d.IncludeSecondary}, ""

	case methodFallback:
		return fallbackMatcher{}, ""

	default:
		return neverMatcher{}, fmt.Sprintf("state %q: unknown detection method %q", stateID, d.Method)
	}
}

func compileCondition(stateID string, c condition) (Matcher, string) {
	get, ok := contextFields[c.Field]
	if !ok {
		return neverMatcher{}, fmt.Sprintf("state %q: unknown context field %q", stateID, c.Field)
	}
	return fieldEqualsMatcher{get: get, want: c.Equals}, ""
}
