package models

import (
	"errors"
	"fmt"
	"strings"
)

// Section groups the wizard questions into thematic blocks.
type Section string

const (
	SectionEnvironment   Section = "environment"
	SectionRelationships Section = "relationships"
	SectionMotivation    Section = "motivation"
	SectionComments      Section = "comments"
)

// Sections lists the wizard sections in presentation order.
var Sections = []Section{SectionEnvironment, SectionRelationships, SectionMotivation, SectionComments}

// Kind tells how an answer is collected and aggregated.
type Kind string

const (
	KindLikert      Kind = "likert"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
)

// Scale identifies the label family used by a Likert question.
type Scale string

const (
	ScaleNone         Scale = ""
	ScaleSatisfaction Scale = "satisfaction5"
	ScaleAgreement    Scale = "agreement4"
)

// QuestionKey is the wire field name and the storage column of a question.
type QuestionKey string

func (k QuestionKey) String() string { return string(k) }

// Question is one entry of the taxonomy.
type Question struct {
	Key     QuestionKey `json:"key"`
	Section Section     `json:"section"`
	Kind    Kind        `json:"type"`
	Scale   Scale       `json:"scale,omitempty"`
	Label   string      `json:"label"`
	Options []string    `json:"options,omitempty"`
}

// ErrUnknownQuestion is returned when a key is not part of the taxonomy.
var ErrUnknownQuestion = errors.New("unknown question key")

var (
	registry     = map[QuestionKey]Question{}
	orderedKeys  []QuestionKey
	bySection    = map[Section][]Question{}
	legacyLookup = map[string]QuestionKey{}
)

func init() {
	for _, sec := range Sections {
		for _, q := range taxonomy[sec] {
			q.Section = sec
			if _, dup := registry[q.Key]; dup {
				panic(fmt.Sprintf("models: duplicate question key %q", q.Key))
			}
			if q.Kind == KindLikert && q.Scale == ScaleNone {
				panic(fmt.Sprintf("models: likert question %q has no scale", q.Key))
			}
			registry[q.Key] = q
			orderedKeys = append(orderedKeys, q.Key)
			bySection[sec] = append(bySection[sec], q)
		}
	}
	for legacy, canonical := range legacyKeys {
		if _, ok := registry[canonical]; !ok {
			panic(fmt.Sprintf("models: legacy key %q points to unknown %q", legacy, canonical))
		}
		legacyLookup[legacy] = canonical
	}
	for _, k := range AreaFields {
		if q, ok := registry[k]; !ok || q.Kind != KindLikert {
			panic(fmt.Sprintf("models: area field %q must be a likert question", k))
		}
	}
}

// Lookup returns the question registered under key.
func Lookup(key string) (Question, bool) {
	q, ok := registry[QuestionKey(key)]
	return q, ok
}

// ParseKey validates a raw field name against the taxonomy.
func ParseKey(raw string) (QuestionKey, error) {
	k := QuestionKey(strings.TrimSpace(raw))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuestion, raw)
	}
	return k, nil
}

// CanonicalKey resolves a deprecated field spelling to its canonical key.
// The boolean reports whether raw was a legacy alias.
func CanonicalKey(raw string) (QuestionKey, bool) {
	k, ok := legacyLookup[strings.TrimSpace(raw)]
	return k, ok
}

// Keys returns every question key in taxonomy order.
func Keys() []QuestionKey {
	return append([]QuestionKey(nil), orderedKeys...)
}

// SectionQuestions returns the questions of a section in order.
func SectionQuestions(sec Section) []Question {
	return append([]Question(nil), bySection[sec]...)
}

// SectionKeys returns the question keys of a section, optionally restricted to kinds.
func SectionKeys(sec Section, kinds ...Kind) []QuestionKey {
	out := make([]QuestionKey, 0, len(bySection[sec]))
	for _, q := range bySection[sec] {
		if len(kinds) == 0 || hasKind(kinds, q.Kind) {
			out = append(out, q.Key)
		}
	}
	return out
}

func hasKind(kinds []Kind, k Kind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// ParseSection maps a route or query segment to a Section.
func ParseSection(raw string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	for _, sec := range Sections {
		if sec == s {
			return sec, true
		}
	}
	return "", false
}

// IsKnownOption reports whether value is a declared option of a categorical question.
// Questions without declared options accept any value.
func (q Question) IsKnownOption(value string) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}
