// Package availability holds the normalized, read-only view of who can work when.
package availability

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Store indexes a roster for availability lookups. It is built once per
// uploaded dataset and never mutated afterwards.
type Store struct {
	members  []models.Member
	males    []int
	byID     map[string]int
	times    []models.TimeSlot
	excluded map[string]bool
	windows  map[string]map[models.SlotKey]bool
}

// NewStore validates the roster and builds the store. Any malformed record
// is rejected with a *models.InputError naming it.
func NewStore(r models.Roster) (*Store, error) {
	times := r.Times
	if len(times) == 0 {
		times = models.DefaultTimes
	}
	if err := checkTimes(times); err != nil {
		return nil, err
	}

	s := &Store{
		byID:     make(map[string]int, len(r.Members)),
		times:    append([]models.TimeSlot(nil), times...),
		excluded: make(map[string]bool),
		windows:  make(map[string]map[models.SlotKey]bool, len(r.Members)),
	}

	members := append([]models.Member(nil), r.Members...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	for i, m := range members {
		record := fmt.Sprintf("member %q", m.ID)
		if m.ID == "" {
			record = fmt.Sprintf("member %q", m.Name)
		}
		if err := validate.Struct(m); err != nil {
			return nil, fromValidation(record, err)
		}
		if _, dup := s.byID[m.ID]; dup {
			return nil, models.NewInputError(record, "id", "duplicate member id")
		}
		win := make(map[models.SlotKey]bool)
		for day, idx := range m.Availability {
			if !day.Valid() {
				return nil, models.NewInputError(record, "availability", "unknown day %q", day)
			}
			for _, t := range idx {
				if t < 0 || t >= len(times) {
					return nil, models.NewInputError(record, "availability", "slot index %d out of range on %s", t, day)
				}
				win[models.SlotKey{Day: day, Time: t}] = true
			}
		}
		for _, d := range m.PreferredDays {
			if !d.Valid() {
				return nil, models.NewInputError(record, "preferred_days", "unknown day %q", d)
			}
		}
		s.byID[m.ID] = i
		s.windows[m.ID] = win
		if m.IsMale() {
			s.males = append(s.males, i)
		}
	}
	s.members = members

	for _, id := range r.Excluded {
		if _, ok := s.byID[id]; !ok {
			return nil, models.NewInputError(fmt.Sprintf("exclusion %q", id), "member_id", "unknown member")
		}
		s.excluded[id] = true
	}

	for _, o := range r.Overrides {
		record := fmt.Sprintf("override %s/%s", o.MemberID, o.Slot)
		win, ok := s.windows[o.MemberID]
		if !ok {
			return nil, models.NewInputError(record, "member_id", "unknown member")
		}
		if !o.Slot.Day.Valid() || o.Slot.Time < 0 || o.Slot.Time >= len(times) {
			return nil, models.NewInputError(record, "slot", "no such slot")
		}
		if o.Available {
			win[o.Slot] = true
		} else {
			delete(win, o.Slot)
		}
	}

	return s, nil
}

func checkTimes(times []models.TimeSlot) error {
	labels := make(map[string]bool, len(times))
	for i, t := range times {
		record := fmt.Sprintf("time slot %d", i)
		if err := validate.Struct(t); err != nil {
			return fromValidation(record, err)
		}
		if t.Index != i {
			return models.NewInputError(record, "index", "expected index %d, got %d", i, t.Index)
		}
		if labels[t.Label] {
			return models.NewInputError(record, "label", "duplicate label %q", t.Label)
		}
		labels[t.Label] = true
	}
	if len(times) > 1 {
		if times[0].Category != models.Opening {
			return models.NewInputError("time slot 0", "category", "first slot of the day must be opening")
		}
		if times[len(times)-1].Category != models.Closing {
			return models.NewInputError(fmt.Sprintf("time slot %d", len(times)-1), "category", "last slot of the day must be closing")
		}
	}
	return nil
}

func fromValidation(record string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return models.NewInputError(record, fe.Field(), "failed %q check", fe.Tag())
	}
	return models.NewInputError(record, "", err.Error())
}

// Members returns every member sorted by id
func (s *Store) Members() []models.Member {
	return append([]models.Member(nil), s.members...)
}

// Males yields the Male members in id order without copying the roster
func (s *Store) Males() iter.Seq[models.Member] {
	return func(yield func(models.Member) bool) {
		for _, i := range s.males {
			if !yield(s.members[i]) {
				return
			}
		}
	}
}

// Member looks a member up by id
func (s *Store) Member(id string) (models.Member, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Member{}, false
	}
	return s.members[i], true
}

// Len returns the member count
func (s *Store) Len() int {
	return len(s.members)
}

// Times returns the daily slot layout
func (s *Store) Times() []models.TimeSlot {
	return append([]models.TimeSlot(nil), s.times...)
}

// Category returns the category of a time index
func (s *Store) Category(t int) models.Category {
	if t < 0 || t >= len(s.times) {
		return ""
	}
	return s.times[t].Category
}

// Label renders a slot for humans, e.g. "Tuesday 10:30-11:30"
func (s *Store) Label(k models.SlotKey) string {
	if k.Time < 0 || k.Time >= len(s.times) {
		return k.String()
	}
	return fmt.Sprintf("%s %s", k.Day, s.times[k.Time].Label)
}

// Excluded reports whether the member must never be scheduled
func (s *Store) Excluded(id string) bool {
	return s.excluded[id]
}

// Available reports whether the member can take the slot, overrides applied.
// Exclusion is reported separately through Excluded.
func (s *Store) Available(id string, k models.SlotKey) bool {
	return s.windows[id][k]
}

// Windows returns the member's effective availability in week order
func (s *Store) Windows(id string) []models.SlotKey {
	win := s.windows[id]
	out := make([]models.SlotKey, 0, len(win))
	for k := range win {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// AvailabilityMap returns the effective availability grouped by day
func (s *Store) AvailabilityMap(id string) map[models.Day][]int {
	out := make(map[models.Day][]int)
	for _, k := range s.Windows(id) {
		out[k.Day] = append(out[k.Day], k.Time)
	}
	return out
}
