package availability

import (
	"testing"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() models.Roster {
	return models.Roster{Members: []models.Member{
		{ID: "zoe", Name: "Zoe", Gender: models.Female, Availability: map[models.Day][]int{models.Tuesday: {2, 0}}},
		{ID: "adam", Name: "Adam", Gender: models.Male, Availability: map[models.Day][]int{models.Monday: {3}}, Opening: models.Unwilling},
	}}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(roster())
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, models.DefaultTimes, s.Times())
	assert.Equal(t, "adam", s.Members()[0].ID, "members are sorted by id")

	m, ok := s.Member("zoe")
	require.True(t, ok)
	assert.Equal(t, "Zoe", m.Name)
	_, ok = s.Member("nobody")
	assert.False(t, ok)

	assert.True(t, s.Available("zoe", models.SlotKey{Day: models.Tuesday, Time: 2}))
	assert.False(t, s.Available("zoe", models.SlotKey{Day: models.Tuesday, Time: 1}))
	assert.Equal(t, []models.SlotKey{{Day: models.Tuesday, Time: 0}, {Day: models.Tuesday, Time: 2}}, s.Windows("zoe"))
	assert.Equal(t, map[models.Day][]int{models.Tuesday: {0, 2}}, s.AvailabilityMap("zoe"))

	assert.Equal(t, models.Opening, s.Category(0))
	assert.Equal(t, models.Closing, s.Category(3))
	assert.Equal(t, models.Category(""), s.Category(9))
	assert.Equal(t, "Tuesday 12:30-1:30", s.Label(models.SlotKey{Day: models.Tuesday, Time: 2}))
}

func TestNewStoreOverridesAndExclusions(t *testing.T) {
	r := roster()
	r.Excluded = []string{"adam"}
	r.Overrides = []models.Override{
		{MemberID: "zoe", Slot: models.SlotKey{Day: models.Tuesday, Time: 0}, Available: false},
		{MemberID: "zoe", Slot: models.SlotKey{Day: models.Friday, Time: 1}, Available: true},
	}
	s, err := NewStore(r)
	require.NoError(t, err)

	assert.True(t, s.Excluded("adam"))
	assert.False(t, s.Excluded("zoe"))
	assert.Equal(t, []models.SlotKey{{Day: models.Tuesday, Time: 2}, {Day: models.Friday, Time: 1}}, s.Windows("zoe"))
}

func TestNewStoreCustomLayout(t *testing.T) {
	r := roster()
	r.Members[1].Availability = map[models.Day][]int{models.Monday: {1}}
	r.Members[0].Availability = nil
	r.Times = []models.TimeSlot{
		{Index: 0, Label: "9-10", Category: models.Opening},
		{Index: 1, Label: "10-11", Category: models.Closing},
	}
	s, err := NewStore(r)
	require.NoError(t, err)
	assert.Len(t, s.Times(), 2)
	assert.Equal(t, "Monday 10-11", s.Label(models.SlotKey{Day: models.Monday, Time: 1}))
}

func TestNewStoreRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.Roster)
		record string
		field  string
	}{
		{"missing name", func(r *models.Roster) { r.Members[0].Name = "" }, `member "zoe"`, "Name"},
		{"bad gender", func(r *models.Roster) { r.Members[0].Gender = "robot" }, `member "zoe"`, "Gender"},
		{"bad preference", func(r *models.Roster) { r.Members[0].Closing = "sometimes" }, `member "zoe"`, "Closing"},
		{"duplicate id", func(r *models.Roster) { r.Members[1].ID = "zoe" }, `member "zoe"`, "id"},
		{"unknown day", func(r *models.Roster) { r.Members[0].Availability["Caturday"] = []int{0} }, `member "zoe"`, "availability"},
		{"slot out of range", func(r *models.Roster) { r.Members[0].Availability[models.Monday] = []int{4} }, `member "zoe"`, "availability"},
		{"bad preferred day", func(r *models.Roster) { r.Members[0].PreferredDays = []models.Day{"Someday"} }, `member "zoe"`, "preferred_days"},
		{"unknown exclusion", func(r *models.Roster) { r.Excluded = []string{"ghost"} }, `exclusion "ghost"`, "member_id"},
		{"unknown override member", func(r *models.Roster) {
			r.Overrides = []models.Override{{MemberID: "ghost", Slot: models.SlotKey{Day: models.Monday}}}
		}, "override ghost/Monday#0", "member_id"},
		{"override slot out of range", func(r *models.Roster) {
			r.Overrides = []models.Override{{MemberID: "zoe", Slot: models.SlotKey{Day: models.Monday, Time: 8}}}
		}, "override zoe/Monday#8", "slot"},
		{"layout not opening first", func(r *models.Roster) {
			r.Times = []models.TimeSlot{{Index: 0, Label: "a", Category: models.Midday}, {Index: 1, Label: "b", Category: models.Closing}}
		}, "time slot 0", "category"},
		{"layout bad index", func(r *models.Roster) {
			r.Times = []models.TimeSlot{{Index: 1, Label: "a", Category: models.Opening}}
		}, "time slot 0", "index"},
		{"layout duplicate label", func(r *models.Roster) {
			r.Times = []models.TimeSlot{{Index: 0, Label: "a", Category: models.Opening}, {Index: 1, Label: "a", Category: models.Closing}}
		}, "time slot 1", "label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := roster()
			tt.mutate(&r)
			_, err := NewStore(r)
			var inputErr *models.InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.record, inputErr.Record)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestMalesYieldsOnlyMalesInIDOrder(t *testing.T) {
	r := roster()
	r.Members = append(r.Members,
		models.Member{ID: "bo", Name: "Bo", Gender: models.Male},
		models.Member{ID: "cy", Name: "Cy", Gender: models.Other},
	)
	s, err := NewStore(r)
	require.NoError(t, err)

	var ids []string
	for m := range s.Males() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"adam", "bo"}, ids)

	for m := range s.Males() {
		assert.Equal(t, "adam", m.ID)
		break
	}
}
