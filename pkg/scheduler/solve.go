package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// Solve builds a schedule for the active days, treating locked pairs as
// fixed points. Running out of members is not an error: unfilled seats are
// reported through the slot status and Unassigned.
func (s *Scheduler) Solve(days []models.Day, locked []models.Lock) (models.Schedule, error) {
	start := time.Now()
	out, steps, err := s.solve(days, locked)
	s.observe("solve", start, steps, out, err)
	return out, err
}

func (s *Scheduler) solve(days []models.Day, locked []models.Lock) (models.Schedule, int, error) {
	days, err := normalizeDays(days)
	if err != nil {
		return models.Schedule{}, 0, err
	}
	times := s.store.Times()
	g := newGrid(days, len(times))

	locks, err := s.checkLocks(g, locked)
	if err != nil {
		return models.Schedule{}, 0, err
	}
	fixed := make(map[models.SlotKey]bool)
	for _, l := range locks {
		g.place(l.Slot, l.MemberID)
		fixed[l.Slot] = true
	}

	var open []models.SlotKey
	for _, k := range g.slots() {
		if !fixed[k] {
			open = append(open, k)
		}
	}

	srch := newSearch(s.store, s.eval, g, open, s.opts)
	srch.run()
	s.log.Debugw("search finished", map[string]any{
		"steps":      srch.steps,
		"open_slots": len(open),
		"seats":      srch.best.seats,
		"covered":    srch.best.covered,
		"preference": srch.best.preference,
		"optimal":    !srch.ceiling.better(srch.best),
	})

	return s.build(days, times, locks, srch.bestAssign), srch.steps, nil
}

// build assembles the returned Schedule: locked members first in each slot,
// then the solver's picks.
func (s *Scheduler) build(days []models.Day, times []models.TimeSlot, locks []models.Lock, assign map[models.SlotKey][]string) models.Schedule {
	out := models.Schedule{
		Days:       append([]models.Day(nil), days...),
		Times:      times,
		Locked:     append([]models.Lock{}, locks...),
		Unassigned: []models.UnassignedMember{},
	}
	placed := make(map[string]bool)
	for _, d := range days {
		for t := range times {
			k := models.SlotKey{Day: d, Time: t}
			members := []string{}
			for _, l := range locks {
				if l.Slot == k {
					members = append(members, l.MemberID)
				}
			}
			members = append(members, assign[k]...)
			for _, id := range members {
				placed[id] = true
			}
			out.Slots = append(out.Slots, models.Assignment{
				Slot:    k,
				Members: members,
				Status:  models.StatusFor(len(members)),
			})
		}
	}

	for _, m := range s.store.Members() {
		if placed[m.ID] || s.store.Excluded(m.ID) {
			continue
		}
		out.Unassigned = append(out.Unassigned, models.UnassignedMember{
			MemberID:     m.ID,
			Name:         m.Name,
			Gender:       m.Gender,
			Availability: s.store.AvailabilityMap(m.ID),
			SlotsFree:    len(s.store.Windows(m.ID)),
			Opening:      m.PreferenceFor(models.Opening),
			Closing:      m.PreferenceFor(models.Closing),
		})
	}
	return out
}

func normalizeDays(days []models.Day) ([]models.Day, error) {
	if len(days) == 0 {
		return nil, models.NewInputError("days", "", "at least one active day is required")
	}
	seen := make(map[models.Day]bool, len(days))
	out := make([]models.Day, 0, len(days))
	for _, d := range days {
		if !d.Valid() {
			return nil, models.NewInputError("days", "", "unknown day %q", d)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out, nil
}

// checkLocks rejects locks that could never be honoured. A member locked into
// two slots is a deliberate manual override and is accepted.
func (s *Scheduler) checkLocks(view View, locked []models.Lock) ([]models.Lock, error) {
	locks := append([]models.Lock(nil), locked...)
	models.SortLocks(locks)
	perSlot := make(map[models.SlotKey]int)
	for i, l := range locks {
		record := fmt.Sprintf("lock %s/%s", l.MemberID, l.Slot)
		if _, ok := s.store.Member(l.MemberID); !ok {
			return nil, models.NewInputError(record, "member_id", "unknown member")
		}
		if !view.Active(l.Slot) {
			return nil, models.NewInputError(record, "slot", "slot is not active")
		}
		if i > 0 && locks[i-1] == l {
			return nil, models.NewInputError(record, "", "duplicate lock")
		}
		perSlot[l.Slot]++
		if perSlot[l.Slot] > 2 {
			return nil, models.NewInputError(record, "slot", "more than two members locked into %s", s.store.Label(l.Slot))
		}
	}
	return locks, nil
}

// checkLayout makes sure a caller-supplied schedule was built over the same
// daily slot set as the store.
func (s *Scheduler) checkLayout(sched models.Schedule) error {
	if len(sched.Times) == 0 {
		return nil
	}
	times := s.store.Times()
	if len(sched.Times) != len(times) {
		return models.NewInputError("schedule", "times", "schedule has %d daily slots, roster has %d", len(sched.Times), len(times))
	}
	for i := range times {
		if sched.Times[i].Label != times[i].Label || sched.Times[i].Category != times[i].Category {
			return models.NewInputError("schedule", "times", "slot %d is %q in the schedule but %q in the roster", i, sched.Times[i].Label, times[i].Label)
		}
	}
	return nil
}

// view returns sched with the store's layout filled in when it was omitted
func (s *Scheduler) view(sched models.Schedule) models.Schedule {
	if len(sched.Times) == 0 {
		sched.Times = s.store.Times()
	}
	return sched
}
