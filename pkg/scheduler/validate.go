package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// ValidatePlacement lists every rule placing memberID into slot would break.
// It never changes sched; the caller decides whether to go ahead anyway.
func (s *Scheduler) ValidatePlacement(sched models.Schedule, memberID string, slot models.SlotKey) ([]models.Warning, error) {
	if err := s.checkLayout(sched); err != nil {
		return nil, err
	}
	if _, ok := s.store.Member(memberID); !ok {
		return nil, models.NewInputError(fmt.Sprintf("member %q", memberID), "member_id", "unknown member")
	}
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}
	v := s.eval.Evaluate(s.view(sched), memberID, slot)
	return s.describe(memberID, slot, v), nil
}

// LockSlot makes memberIDs the locked occupants of slot, replacing whatever
// was locked there, and re-solves the rest of the week. The warnings are
// advisory: the placement is applied regardless.
func (s *Scheduler) LockSlot(sched models.Schedule, slot models.SlotKey, memberIDs []string) (models.Schedule, []models.Warning, error) {
	start := time.Now()
	fail := func(err error) (models.Schedule, []models.Warning, error) {
		s.observe("lock", start, 0, models.Schedule{}, err)
		return models.Schedule{}, nil, err
	}
	if err := s.checkLayout(sched); err != nil {
		return fail(err)
	}
	if err := s.checkSlot(slot); err != nil {
		return fail(err)
	}
	if len(memberIDs) > 2 {
		return fail(models.NewInputError(fmt.Sprintf("slot %s", s.store.Label(slot)), "member_ids", "a slot holds at most two members"))
	}
	if len(memberIDs) == 2 && memberIDs[0] == memberIDs[1] {
		return fail(models.NewInputError(fmt.Sprintf("slot %s", s.store.Label(slot)), "member_ids", "duplicate member %q", memberIDs[0]))
	}

	locks := make([]models.Lock, 0, len(sched.Locked)+len(memberIDs))
	for _, l := range sched.Locked {
		if l.Slot != slot {
			locks = append(locks, l)
		}
	}

	// Only locked placements survive the re-solve, so validate against
	// those, adding the new occupants one at a time.
	draft := s.view(models.Schedule{Days: sched.Days})
	for _, l := range locks {
		draft = withMember(draft, l.Slot, l.MemberID)
	}
	var warnings []models.Warning
	for _, id := range memberIDs {
		if _, ok := s.store.Member(id); !ok {
			return fail(models.NewInputError(fmt.Sprintf("member %q", id), "member_ids", "unknown member"))
		}
		warnings = append(warnings, s.describe(id, slot, s.eval.Evaluate(draft, id, slot))...)
		draft = withMember(draft, slot, id)
		locks = append(locks, models.Lock{Slot: slot, MemberID: id})
	}

	out, steps, err := s.solve(sched.Days, locks)
	s.observe("lock", start, steps, out, err)
	if err != nil {
		return models.Schedule{}, nil, err
	}
	return out, warnings, nil
}

// UnlockSlot releases the slot's locks. Its occupants stay where they are
// until the next re-solve.
func (s *Scheduler) UnlockSlot(sched models.Schedule, slot models.SlotKey) models.Schedule {
	out := sched.Clone()
	out.Locked = make([]models.Lock, 0, len(sched.Locked))
	for _, l := range sched.Locked {
		if l.Slot != slot {
			out.Locked = append(out.Locked, l)
		}
	}
	return out
}

func withMember(sched models.Schedule, slot models.SlotKey, id string) models.Schedule {
	for i := range sched.Slots {
		if sched.Slots[i].Slot == slot {
			sched.Slots[i].Members = append(sched.Slots[i].Members, id)
			return sched
		}
	}
	sched.Slots = append(sched.Slots, models.Assignment{Slot: slot, Members: []string{id}})
	return sched
}

func (s *Scheduler) checkSlot(slot models.SlotKey) error {
	if !slot.Day.Valid() {
		return models.NewInputError(fmt.Sprintf("slot %s", slot), "day", "unknown day %q", slot.Day)
	}
	if slot.Time < 0 || slot.Time >= len(s.store.Times()) {
		return models.NewInputError(fmt.Sprintf("slot %s", slot), "time", "no slot %d in the daily layout", slot.Time)
	}
	return nil
}

// describe turns a verdict into operator-facing warnings
func (s *Scheduler) describe(memberID string, slot models.SlotKey, v Verdict) []models.Warning {
	m, _ := s.store.Member(memberID)
	label := s.store.Label(slot)
	var out []models.Warning
	add := func(kind string, sev models.Severity, format string, args ...any) {
		out = append(out, models.Warning{
			Kind:     kind,
			Severity: sev,
			MemberID: memberID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, h := range v.Hard {
		switch h {
		case InactiveSlot:
			add(string(h), models.Hard, "%s is not an active day", slot.Day)
		case UnknownMember:
			add(string(h), models.Hard, "%s is not on the roster", memberID)
		case ExcludedMember:
			add(string(h), models.Hard, "%s is excluded from scheduling", m.Name)
		case Unavailable:
			add(string(h), models.Hard, "%s is not available %s", m.Name, label)
		case AlreadyInSlot:
			add(string(h), models.Hard, "%s is already in %s", m.Name, label)
		case SlotFull:
			add(string(h), models.Hard, "%s already has two members", label)
		case AlreadyScheduled:
			for _, k := range v.Conflicts {
				if k.Day == slot.Day {
					add(string(h), models.Hard, "%s is already working %s", m.Name, k.Day)
				} else {
					add(string(h), models.Hard, "%s already has a shift this week (%s)", m.Name, s.store.Label(k))
				}
			}
		}
	}
	for _, sc := range v.Soft {
		switch sc {
		case OpeningPreference:
			add(string(sc), models.Soft, "%s prefers not to open", m.Name)
		case ClosingPreference:
			add(string(sc), models.Soft, "%s prefers not to close", m.Name)
		case NoMale:
			add(string(sc), models.Soft, "no Male present in %s", label)
		}
	}
	return out
}
