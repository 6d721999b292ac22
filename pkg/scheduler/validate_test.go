package scheduler

import (
	"testing"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(ws []models.Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Message
	}
	return out
}

func validateRoster() models.Roster {
	ivy := member("ivy", models.Female, map[models.Day][]int{models.Monday: {0, 1, 3}, models.Tuesday: {1}})
	ivy.Name = "Ivy"
	ivy.Closing = models.Unwilling
	jo := member("jo", models.Female, map[models.Day][]int{models.Monday: {3}})
	jo.Name = "Jo"
	ken := member("ken", models.Male, map[models.Day][]int{models.Monday: {3}})
	ken.Name = "Ken"
	lu := member("lu", models.Female, map[models.Day][]int{models.Monday: {0}})
	lu.Name = "Lu"
	return models.Roster{Members: []models.Member{ivy, jo, ken, lu}, Excluded: []string{"lu"}}
}

func TestValidatePlacementMessages(t *testing.T) {
	s := newTestScheduler(t, validateRoster())
	mon0 := models.SlotKey{Day: models.Monday, Time: 0}
	mon3 := models.SlotKey{Day: models.Monday, Time: 3}
	sched := models.Schedule{
		Days: []models.Day{models.Monday, models.Tuesday},
		Slots: []models.Assignment{
			{Slot: mon0, Members: []string{"ivy"}, Status: models.Partial},
			{Slot: mon3, Members: []string{"jo"}, Status: models.Partial},
		},
	}

	ws, err := s.ValidatePlacement(sched, "ivy", models.SlotKey{Day: models.Monday, Time: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ivy is already working Monday"}, messages(ws))
	assert.Equal(t, models.Hard, ws[0].Severity)

	ws, err = s.ValidatePlacement(sched, "ivy", models.SlotKey{Day: models.Tuesday, Time: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ivy already has a shift this week (Monday 10:30-11:30)"}, messages(ws))

	ws, err = s.ValidatePlacement(sched, "ivy", models.SlotKey{Day: models.Tuesday, Time: 2})
	require.NoError(t, err)
	assert.Contains(t, messages(ws), "Ivy is not available Tuesday 12:30-1:30")

	ws, err = s.ValidatePlacement(sched, "lu", mon0)
	require.NoError(t, err)
	assert.Contains(t, messages(ws), "Lu is excluded from scheduling")

	ws, err = s.ValidatePlacement(sched, "ken", models.SlotKey{Day: models.Wednesday, Time: 3})
	require.NoError(t, err)
	assert.Contains(t, messages(ws), "Wednesday is not an active day")

	ws, err = s.ValidatePlacement(models.Schedule{Days: []models.Day{models.Monday}}, "ken", mon3)
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestValidatePlacementSoftWarnings(t *testing.T) {
	s := newTestScheduler(t, validateRoster())
	mon3 := models.SlotKey{Day: models.Monday, Time: 3}
	sched := models.Schedule{
		Days:  []models.Day{models.Monday},
		Slots: []models.Assignment{{Slot: mon3, Members: []string{"jo"}, Status: models.Partial}},
	}

	ws, err := s.ValidatePlacement(sched, "ivy", mon3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Ivy prefers not to close",
		"no Male present in Monday 1:30-2:30",
	}, messages(ws))
	for _, w := range ws {
		assert.Equal(t, models.Soft, w.Severity)
		assert.Equal(t, "ivy", w.MemberID)
	}
}

func TestValidatePlacementInputErrors(t *testing.T) {
	s := newTestScheduler(t, validateRoster())
	sched := models.Schedule{Days: []models.Day{models.Monday}}
	var inputErr *models.InputError

	_, err := s.ValidatePlacement(sched, "ghost", models.SlotKey{Day: models.Monday, Time: 0})
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "member_id", inputErr.Field)

	_, err = s.ValidatePlacement(sched, "ivy", models.SlotKey{Day: models.Monday, Time: 7})
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "time", inputErr.Field)

	_, err = s.ValidatePlacement(sched, "ivy", models.SlotKey{Day: "Someday", Time: 0})
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "day", inputErr.Field)
}

func TestLockSlotForcesPlacementWithWarnings(t *testing.T) {
	s := newTestScheduler(t, validateRoster())
	mon3 := models.SlotKey{Day: models.Monday, Time: 3}

	sched, err := s.Solve([]models.Day{models.Monday}, nil)
	require.NoError(t, err)
	assert.NotContains(t, sched.Occupants(mon3), "ivy")

	out, ws, err := s.LockSlot(sched, mon3, []string{"ivy", "jo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ivy", "jo"}, out.Occupants(mon3))
	assert.True(t, out.IsLocked(mon3, "ivy"))
	assert.True(t, out.IsLocked(mon3, "jo"))
	assert.Contains(t, messages(ws), "Ivy prefers not to close")
	assert.Contains(t, messages(ws), "no Male present in Monday 1:30-2:30")
	assert.Equal(t, []models.UnassignedMember{{
		MemberID:     "ken",
		Name:         "Ken",
		Gender:       models.Male,
		Availability: map[models.Day][]int{models.Monday: {3}},
		SlotsFree:    1,
		Opening:      models.Neutral,
		Closing:      models.Neutral,
	}}, out.Unassigned)

	unlocked := s.UnlockSlot(out, mon3)
	assert.Empty(t, unlocked.Locked)
	assert.Equal(t, out.Slots, unlocked.Slots)
	assert.Len(t, out.Locked, 2, "UnlockSlot must not modify its input")

	again, err := s.Reoptimize(unlocked, unlocked.Locked)
	require.NoError(t, err)
	assert.NotContains(t, again.Occupants(mon3), "ivy")
}

func TestLockSlotRejectsBadRequests(t *testing.T) {
	s := newTestScheduler(t, validateRoster())
	mon3 := models.SlotKey{Day: models.Monday, Time: 3}
	sched := models.Schedule{Days: []models.Day{models.Monday}}
	var inputErr *models.InputError

	_, _, err := s.LockSlot(sched, mon3, []string{"ivy", "jo", "ken"})
	require.ErrorAs(t, err, &inputErr)

	_, _, err = s.LockSlot(sched, mon3, []string{"jo", "jo"})
	require.ErrorAs(t, err, &inputErr)

	_, _, err = s.LockSlot(sched, mon3, []string{"ghost"})
	require.ErrorAs(t, err, &inputErr)

	_, _, err = s.LockSlot(sched, models.SlotKey{Day: models.Friday, Time: 0}, []string{"jo"})
	require.ErrorAs(t, err, &inputErr)
}
