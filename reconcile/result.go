package reconcile

import (
	"fmt"
	"strings"

	"liora"
	"liora/units"
)

// Candidate is an ingredient proposed by an outside source, before it has
// been checked against the catalog.
type Candidate struct {
	Name     string
	Category string
	Quantity units.Quantity
}

// MissingFieldError reports a candidate built without a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("ingredient candidate is missing %s", e.Field)
}

// NewCandidate builds a candidate, rejecting an empty name.
func NewCandidate(name, category string, q units.Quantity) (Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Candidate{}, &MissingFieldError{Field: "name"}
	}
	return Candidate{Name: name, Category: strings.TrimSpace(category), Quantity: q}, nil
}

// FromIngredient turns a recipe line into a candidate.
func FromIngredient(ing liora.Ingredient) (Candidate, error) {
	return NewCandidate(ing.Name, ing.Category, units.Quantity{Amount: ing.Quantity, Unit: ing.Unit})
}

// Ingredient turns a candidate back into a recipe line.
func (c Candidate) Ingredient() liora.Ingredient {
	return liora.Ingredient{
		Name:     c.Name,
		Quantity: c.Quantity.Amount,
		Unit:     c.Quantity.Unit,
		Category: c.Category,
	}
}

type Kind int

const (
	Unmatched Kind = iota
	Exact
	Fuzzy
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return "unmatched"
	}
}

// Match is the outcome of a catalog lookup. Name and Category are the
// catalog entry that was matched and are empty when Kind is Unmatched.
type Match struct {
	Kind     Kind
	Score    float64
	Name     string
	Category string
}

// State tracks one candidate through reconciliation.
type State int

const (
	StateCandidate State = iota
	StateNormalized
	StateMatchedExact
	StateMatchedFuzzy
	StateUnmatched
	StateResolved
	StateRejected
)

var stateNames = map[State]string{
	StateCandidate:    "candidate",
	StateNormalized:   "normalized",
	StateMatchedExact: "matched_exact",
	StateMatchedFuzzy: "matched_fuzzy",
	StateUnmatched:    "unmatched",
	StateResolved:     "resolved_via_escalation",
	StateRejected:     "rejected",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	switch s {
	case StateMatchedExact, StateMatchedFuzzy, StateResolved, StateRejected:
		return true
	}
	return false
}

// Resolved reports whether s ends with a usable catalog entry.
func (s State) Resolved() bool {
	return s == StateMatchedExact || s == StateMatchedFuzzy || s == StateResolved
}

// Outcome is the full record of one candidate's reconciliation.
type Outcome struct {
	Original  Candidate
	Candidate Candidate
	Match     Match
	State     State
	Trail     []State
	Err       error
}

func (o *Outcome) move(s State) {
	o.State = s
	o.Trail = append(o.Trail, s)
}

// Report collects the outcomes of a batch, in input order.
type Report struct {
	Outcomes []Outcome
	// SaveErr is set when an accepted escalation could not be persisted.
	SaveErr error
}

// OK is true only when every candidate resolved to a catalog entry.
func (r Report) OK() bool {
	for _, o := range r.Outcomes {
		if !o.State.Resolved() {
			return false
		}
	}
	return true
}

// Unresolved returns the outcomes that block the batch.
func (r Report) Unresolved() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.State.Resolved() {
			out = append(out, o)
		}
	}
	return out
}

// Candidates returns the corrected candidates in input order.
func (r Report) Candidates() []Candidate {
	out := make([]Candidate, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Candidate
	}
	return out
}

// Err returns an *UnmatchedError naming every unresolved candidate, or nil.
func (r Report) Err() error {
	unresolved := r.Unresolved()
	if len(unresolved) == 0 {
		return nil
	}
	names := make([]string, len(unresolved))
	for i, o := range unresolved {
		names[i] = o.Original.Name
	}
	return &UnmatchedError{Names: names}
}

// UnmatchedError lists the ingredients a batch could not resolve.
type UnmatchedError struct {
	Names []string
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("%d unresolved ingredient(s): %s", len(e.Names), strings.Join(e.Names, ", "))
}
