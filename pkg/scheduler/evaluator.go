package scheduler

import (
	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// View is a partial schedule the evaluator can inspect. Both models.Schedule
// and the solver's working grid implement it.
type View interface {
	Active(slot models.SlotKey) bool
	Occupants(slot models.SlotKey) []string
	SlotsOf(memberID string) []models.SlotKey
}

// Outcome summarises a Verdict
type Outcome int

const (
	Allowed Outcome = iota
	Warns
	Violates
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Warns:
		return "warns"
	default:
		return "violates"
	}
}

// HardConstraint is a rule automated placement must never break
type HardConstraint string

const (
	InactiveSlot     HardConstraint = "inactive_slot"
	UnknownMember    HardConstraint = "unknown_member"
	ExcludedMember   HardConstraint = "excluded"
	Unavailable      HardConstraint = "unavailable"
	AlreadyInSlot    HardConstraint = "already_in_slot"
	AlreadyScheduled HardConstraint = "already_scheduled"
	SlotFull         HardConstraint = "slot_full"
)

// SoftConstraint is advisory: broken only through a manual override
type SoftConstraint string

const (
	OpeningPreference SoftConstraint = "opening_preference"
	ClosingPreference SoftConstraint = "closing_preference"
	NoMale            SoftConstraint = "no_male"
)

// Verdict is the evaluator's answer for one (member, slot) pair
type Verdict struct {
	Outcome Outcome
	Hard    []HardConstraint
	Soft    []SoftConstraint
	// Conflicts lists the other slots the member already holds this week.
	Conflicts []models.SlotKey
}

// Violated reports whether h is among the broken hard rules
func (v Verdict) Violated(h HardConstraint) bool {
	for _, x := range v.Hard {
		if x == h {
			return true
		}
	}
	return false
}

// Warned reports whether s is among the broken soft rules
func (v Verdict) Warned(s SoftConstraint) bool {
	for _, x := range v.Soft {
		if x == s {
			return true
		}
	}
	return false
}

// AutoEligible reports whether the solver may place the member on its own:
// no hard violation and no opening/closing unwillingness.
func (v Verdict) AutoEligible() bool {
	return v.Outcome != Violates && !v.Warned(OpeningPreference) && !v.Warned(ClosingPreference)
}

// Evaluator answers "can member M take slot S given the current partial
// assignment?". It holds nothing but the read-only availability store.
type Evaluator struct {
	store *availability.Store
}

// NewEvaluator builds an evaluator over a store
func NewEvaluator(store *availability.Store) Evaluator {
	return Evaluator{store: store}
}

// Evaluate checks every rule for placing memberID into slot
func (e Evaluator) Evaluate(view View, memberID string, slot models.SlotKey) Verdict {
	var v Verdict
	m, ok := e.store.Member(memberID)
	if !ok {
		v.Hard = append(v.Hard, UnknownMember)
		v.Outcome = Violates
		return v
	}

	if !view.Active(slot) {
		v.Hard = append(v.Hard, InactiveSlot)
	}
	if e.store.Excluded(memberID) {
		v.Hard = append(v.Hard, ExcludedMember)
	}
	if !e.store.Available(memberID, slot) {
		v.Hard = append(v.Hard, Unavailable)
	}

	occ := view.Occupants(slot)
	inSlot := contains(occ, memberID)
	if inSlot {
		v.Hard = append(v.Hard, AlreadyInSlot)
	} else if len(occ) >= 2 {
		v.Hard = append(v.Hard, SlotFull)
	}

	for _, k := range view.SlotsOf(memberID) {
		if k != slot {
			v.Conflicts = append(v.Conflicts, k)
		}
	}
	if len(v.Conflicts) > 0 {
		v.Hard = append(v.Hard, AlreadyScheduled)
	}

	cat := e.store.Category(slot.Time)
	if m.PreferenceFor(cat) == models.Unwilling {
		switch cat {
		case models.Opening:
			v.Soft = append(v.Soft, OpeningPreference)
		case models.Closing:
			v.Soft = append(v.Soft, ClosingPreference)
		}
	}

	// Heavy lifting: completing the pair without a Male is only a problem
	// while some free Male could still take the slot.
	if cat.NeedsMale() && !m.IsMale() && !inSlot && len(occ) == 1 &&
		!e.anyMale(occ) && e.maleAlternative(view, slot, occ) {
		v.Soft = append(v.Soft, NoMale)
	}

	switch {
	case len(v.Hard) > 0:
		v.Outcome = Violates
	case len(v.Soft) > 0:
		v.Outcome = Warns
	default:
		v.Outcome = Allowed
	}
	return v
}

func (e Evaluator) anyMale(ids []string) bool {
	for _, id := range ids {
		if m, ok := e.store.Member(id); ok && m.IsMale() {
			return true
		}
	}
	return false
}

func (e Evaluator) maleAlternative(view View, slot models.SlotKey, occ []string) bool {
	cat := e.store.Category(slot.Time)
	for m := range e.store.Males() {
		if contains(occ, m.ID) || e.store.Excluded(m.ID) {
			continue
		}
		if !e.store.Available(m.ID, slot) || m.PreferenceFor(cat) == models.Unwilling {
			continue
		}
		if len(view.SlotsOf(m.ID)) == 0 {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
