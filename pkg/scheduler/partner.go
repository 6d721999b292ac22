package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// PartnerSlots ranks every slot memberA and memberB could share. Only locked
// placements are taken from sched since everything else is re-solved anyway.
// Without force, a slot is incompatible when either member is locked into a
// different one (one shift per week).
func (s *Scheduler) PartnerSlots(memberA, memberB string, sched models.Schedule, force bool) ([]models.PairCandidate, error) {
	a, b, err := s.pair(memberA, memberB)
	if err != nil {
		return nil, err
	}
	if err := s.checkLayout(sched); err != nil {
		return nil, err
	}
	days, err := normalizeDays(sched.Days)
	if err != nil {
		return nil, err
	}

	times := s.store.Times()
	locked := newGrid(days, len(times))
	locks, err := s.checkLocks(locked, sched.Locked)
	if err != nil {
		return nil, err
	}
	for _, l := range locks {
		locked.place(l.Slot, l.MemberID)
	}
	blank := newGrid(days, len(times))

	var out []models.PairCandidate
	for _, slot := range locked.slots() {
		va := s.eval.Evaluate(locked, a.ID, slot)
		vb := s.eval.Evaluate(locked, b.ID, slot)
		if !s.partnerCompatible(va, force) || !s.partnerCompatible(vb, force) {
			continue
		}

		cat := s.store.Category(slot.Time)
		c := models.PairCandidate{
			Slot:         slot,
			Label:        s.store.Label(slot),
			GenderOK:     !cat.NeedsMale() || a.IsMale() || b.IsMale(),
			PreferenceOK: !hasPreferenceWarning(va) && !hasPreferenceWarning(vb),
		}
		for _, id := range locked.Occupants(slot) {
			if id != a.ID && id != b.ID {
				c.Displaces = append(c.Displaces, id)
			}
		}
		for _, m := range s.store.Members() {
			if m.ID == a.ID || m.ID == b.ID {
				continue
			}
			if s.eval.Evaluate(blank, m.ID, slot).AutoEligible() {
				c.Scarcity++
			}
		}
		c.Reason = s.partnerReason(a, b, c, va, vb)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if x.GenderOK != y.GenderOK {
			return x.GenderOK
		}
		if (len(x.Displaces) == 0) != (len(y.Displaces) == 0) {
			return len(x.Displaces) == 0
		}
		if x.PreferenceOK != y.PreferenceOK {
			return x.PreferenceOK
		}
		if x.Scarcity != y.Scarcity {
			return x.Scarcity < y.Scarcity
		}
		return x.Slot.Less(y.Slot)
	})
	return out, nil
}

// MatchPartners locks memberA and memberB into their best shared slot and
// re-solves everything else. It returns models.ErrInfeasible, leaving sched
// untouched, when the two share no compatible slot.
func (s *Scheduler) MatchPartners(memberA, memberB string, sched models.Schedule, force bool) (models.Schedule, error) {
	start := time.Now()
	cands, err := s.PartnerSlots(memberA, memberB, sched, force)
	if err != nil {
		s.observe("match", start, 0, models.Schedule{}, err)
		return models.Schedule{}, err
	}
	if len(cands) == 0 {
		a, _ := s.store.Member(memberA)
		b, _ := s.store.Member(memberB)
		err := fmt.Errorf("%w: %s and %s share no compatible slot", models.ErrInfeasible, a.Name, b.Name)
		s.observe("match", start, 0, models.Schedule{}, err)
		return models.Schedule{}, err
	}

	best := cands[0]
	locks := make([]models.Lock, 0, len(sched.Locked)+2)
	for _, l := range sched.Locked {
		if l.Slot == best.Slot {
			// Displaced locks go; the pair's own locks are re-added below.
			continue
		}
		locks = append(locks, l)
	}
	locks = append(locks,
		models.Lock{Slot: best.Slot, MemberID: memberA},
		models.Lock{Slot: best.Slot, MemberID: memberB},
	)

	out, steps, err := s.solve(sched.Days, locks)
	s.observe("match", start, steps, out, err)
	if err != nil {
		return models.Schedule{}, err
	}
	s.log.Infof("matched %s and %s into %s (%s)", memberA, memberB, best.Label, best.Reason)
	return out, nil
}

func (s *Scheduler) pair(memberA, memberB string) (models.Member, models.Member, error) {
	a, ok := s.store.Member(memberA)
	if !ok {
		return a, models.Member{}, models.NewInputError(fmt.Sprintf("member %q", memberA), "member_a", "unknown member")
	}
	b, ok := s.store.Member(memberB)
	if !ok {
		return a, b, models.NewInputError(fmt.Sprintf("member %q", memberB), "member_b", "unknown member")
	}
	if a.ID == b.ID {
		return a, b, models.NewInputError(fmt.Sprintf("member %q", memberA), "member_b", "cannot pair a member with themselves")
	}
	return a, b, nil
}

// partnerCompatible filters on the hard rules that matter when the pair will
// take the whole slot. A full slot only means displacement, and a lock in
// another slot is tolerated when forced.
func (s *Scheduler) partnerCompatible(v Verdict, force bool) bool {
	for _, h := range v.Hard {
		switch h {
		case SlotFull, AlreadyInSlot:
		case AlreadyScheduled:
			if !force {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func hasPreferenceWarning(v Verdict) bool {
	return v.Warned(OpeningPreference) || v.Warned(ClosingPreference)
}

func (s *Scheduler) partnerReason(a, b models.Member, c models.PairCandidate, va, vb Verdict) string {
	var parts []string
	if c.GenderOK {
		parts = append(parts, "heavy-lifting ok")
	} else {
		parts = append(parts, "no Male for heavy lifting")
	}
	if len(c.Displaces) > 0 {
		parts = append(parts, "displaces "+strings.Join(c.Displaces, ", "))
	}
	for _, p := range []struct {
		m models.Member
		v Verdict
	}{{a, va}, {b, vb}} {
		if p.v.Warned(OpeningPreference) {
			parts = append(parts, p.m.Name+" prefers not to open")
		}
		if p.v.Warned(ClosingPreference) {
			parts = append(parts, p.m.Name+" prefers not to close")
		}
		if p.v.Violated(AlreadyScheduled) {
			parts = append(parts, p.m.Name+" is locked elsewhere")
		}
	}
	parts = append(parts, fmt.Sprintf("%d other members available", c.Scarcity))
	return strings.Join(parts, "; ")
}
