package models

import (
	"slices"
	"sort"
)

// Schedule maps every active slot to its occupants, plus the locked pairs and
// the members left over. It is treated as a value: operations return new ones.
type Schedule struct {
	Days       []Day              `json:"days"`
	Times      []TimeSlot         `json:"times"`
	Slots      []Assignment       `json:"slots"`
	Locked     []Lock             `json:"locked"`
	Unassigned []UnassignedMember `json:"unassigned"`
}

// Clone returns a deep copy. Empty and nil slices survive as they were so
// the JSON form of the copy matches the original.
func (s Schedule) Clone() Schedule {
	out := Schedule{
		Days:   slices.Clone(s.Days),
		Times:  slices.Clone(s.Times),
		Locked: slices.Clone(s.Locked),
	}
	if s.Slots != nil {
		out.Slots = make([]Assignment, len(s.Slots))
		for i, a := range s.Slots {
			a.Members = slices.Clone(a.Members)
			out.Slots[i] = a
		}
	}
	if s.Unassigned != nil {
		out.Unassigned = make([]UnassignedMember, len(s.Unassigned))
		for i, u := range s.Unassigned {
			if u.Availability != nil {
				avail := make(map[Day][]int, len(u.Availability))
				for d, idx := range u.Availability {
					avail[d] = slices.Clone(idx)
				}
				u.Availability = avail
			}
			out.Unassigned[i] = u
		}
	}
	return out
}

// Active reports whether the slot belongs to this schedule's week
func (s Schedule) Active(k SlotKey) bool {
	if k.Time < 0 || k.Time >= len(s.Times) {
		return false
	}
	for _, d := range s.Days {
		if d == k.Day {
			return true
		}
	}
	return false
}

// Occupants returns the member ids in a slot
func (s Schedule) Occupants(k SlotKey) []string {
	for _, a := range s.Slots {
		if a.Slot == k {
			return a.Members
		}
	}
	return nil
}

// SlotsOf returns every slot the member occupies, in week order
func (s Schedule) SlotsOf(memberID string) []SlotKey {
	var out []SlotKey
	for _, a := range s.Slots {
		for _, id := range a.Members {
			if id == memberID {
				out = append(out, a.Slot)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// LocksIn returns the members locked into a slot
func (s Schedule) LocksIn(k SlotKey) []string {
	var out []string
	for _, l := range s.Locked {
		if l.Slot == k {
			out = append(out, l.MemberID)
		}
	}
	return out
}

// IsLocked reports whether the member is locked into the slot
func (s Schedule) IsLocked(k SlotKey, memberID string) bool {
	for _, l := range s.Locked {
		if l.Slot == k && l.MemberID == memberID {
			return true
		}
	}
	return false
}

// Assigned returns the set of member ids placed anywhere
func (s Schedule) Assigned() map[string]bool {
	out := make(map[string]bool)
	for _, a := range s.Slots {
		for _, id := range a.Members {
			out[id] = true
		}
	}
	return out
}

// SortLocks orders locks by slot, then member id
func SortLocks(locks []Lock) {
	sort.Slice(locks, func(i, j int) bool {
		if locks[i].Slot != locks[j].Slot {
			return locks[i].Slot.Less(locks[j].Slot)
		}
		return locks[i].MemberID < locks[j].MemberID
	})
}
