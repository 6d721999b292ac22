package models

import (
	"fmt"
	"strings"
)

// Day is a weekday name as it appears in the roster
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// AllDays lists every known day in week order
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DefaultDays are the days active when a run does not say otherwise
var DefaultDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// Index returns the position of the day in the week, or -1 if unknown
func (d Day) Index() int {
	for i, day := range AllDays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of AllDays
func (d Day) Valid() bool {
	return d.Index() >= 0
}

// ParseDay matches a day name case-insensitively
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, day := range AllDays {
		if strings.EqualFold(string(day), s) {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// Gender is used only for the heavy-lifting rule
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

// Category is the time-of-day class of a slot
type Category string

const (
	Opening Category = "opening"
	Midday  Category = "midday"
	Closing Category = "closing"
)

// NeedsMale reports whether slots of this category fall under the heavy-lifting rule
func (c Category) NeedsMale() bool {
	return c == Opening || c == Closing
}

// Preference captures how a member feels about opening or closing.
// The zero value means the member tolerates it.
type Preference string

const (
	Willing   Preference = "willing"
	Neutral   Preference = "neutral"
	Unwilling Preference = "unwilling"
)

// TimeSlot is one entry of the fixed daily slot set
type TimeSlot struct {
	Index    int      `json:"index"`
	Label    string   `json:"label" validate:"required"`
	Category Category `json:"category" validate:"required,oneof=opening midday closing"`
}

// DefaultTimes is the daily layout used when a roster carries none
var DefaultTimes = []TimeSlot{
	{Index: 0, Label: "10:30-11:30", Category: Opening},
	{Index: 1, Label: "11:30-12:30", Category: Midday},
	{Index: 2, Label: "12:30-1:30", Category: Midday},
	{Index: 3, Label: "1:30-2:30", Category: Closing},
}

// SlotKey identifies a slot by day and time index
type SlotKey struct {
	Day  Day `json:"day"`
	Time int `json:"time"`
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s#%d", k.Day, k.Time)
}

// Less orders slots by day, then time
func (k SlotKey) Less(o SlotKey) bool {
	if k.Day != o.Day {
		return k.Day.Index() < o.Day.Index()
	}
	return k.Time < o.Time
}

// Member represents a person who can be placed in slots
type Member struct {
	ID            string        `json:"id" validate:"required"`
	Name          string        `json:"name" validate:"required"`
	Gender        Gender        `json:"gender" validate:"required,oneof=Male Female Other"`
	Availability  map[Day][]int `json:"availability"`
	Opening       Preference    `json:"opening,omitempty" validate:"omitempty,oneof=willing neutral unwilling"`
	Closing       Preference    `json:"closing,omitempty" validate:"omitempty,oneof=willing neutral unwilling"`
	PreferredDays []Day         `json:"preferred_days,omitempty"`
}

// IsMale reports whether the member counts toward the heavy-lifting rule
func (m Member) IsMale() bool {
	return m.Gender == Male
}

// Prefers reports whether d is one of the member's preferred days
func (m Member) Prefers(d Day) bool {
	for _, p := range m.PreferredDays {
		if p == d {
			return true
		}
	}
	return false
}

// PreferenceFor returns the member's stance on a slot category
func (m Member) PreferenceFor(c Category) Preference {
	var p Preference
	switch c {
	case Opening:
		p = m.Opening
	case Closing:
		p = m.Closing
	default:
		return Neutral
	}
	if p == "" {
		return Neutral
	}
	return p
}

// Override forces a member's availability for one slot on or off
type Override struct {
	MemberID  string  `json:"member_id" validate:"required"`
	Slot      SlotKey `json:"slot"`
	Available bool    `json:"available"`
}

// Roster is the normalized input produced by ingestion
type Roster struct {
	Members   []Member   `json:"members"`
	Times     []TimeSlot `json:"times,omitempty"`
	Excluded  []string   `json:"excluded,omitempty"`
	Overrides []Override `json:"overrides,omitempty"`
}

// Lock pins a member to a slot across re-solves
type Lock struct {
	Slot     SlotKey `json:"slot"`
	MemberID string  `json:"member_id"`
}

// FillStatus describes how many of the two seats a slot has
type FillStatus string

const (
	Filled  FillStatus = "filled"
	Partial FillStatus = "partial"
	Empty   FillStatus = "empty"
)

// StatusFor returns the fill status for an occupant count
func StatusFor(n int) FillStatus {
	switch {
	case n >= 2:
		return Filled
	case n == 1:
		return Partial
	default:
		return Empty
	}
}

// Assignment holds the occupants of one slot
type Assignment struct {
	Slot    SlotKey    `json:"slot"`
	Members []string   `json:"members"`
	Status  FillStatus `json:"status"`
}

// UnassignedMember is a member the engine could not place, with the windows
// an operator needs to find them a spot by hand
type UnassignedMember struct {
	MemberID     string        `json:"member_id"`
	Name         string        `json:"name"`
	Gender       Gender        `json:"gender"`
	Availability map[Day][]int `json:"availability"`
	SlotsFree    int           `json:"slots_free"`
	Opening      Preference    `json:"opening"`
	Closing      Preference    `json:"closing"`
}

// Severity separates blocking-for-automation rules from advisory ones
type Severity string

const (
	Hard Severity = "hard"
	Soft Severity = "soft"
)

// Warning is a human-readable constraint violation
type Warning struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	MemberID string   `json:"member_id,omitempty"`
	Message  string   `json:"message"`
}

// ConflictReason represents why a slot could not be filled
type ConflictReason struct {
	Slot    SlotKey  `json:"slot"`
	Missing int      `json:"missing"`
	Reasons []string `json:"reasons"`
}
