package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsEmptyMembers(t *testing.T) {
	mon0 := SlotKey{Day: Monday, Time: 0}
	sched := Schedule{
		Days:  []Day{Monday},
		Times: DefaultTimes,
		Slots: []Assignment{
			{Slot: mon0, Members: []string{}, Status: Empty},
			{Slot: SlotKey{Day: Monday, Time: 1}, Members: []string{"a", "b"}, Status: Filled},
		},
		Locked:     []Lock{},
		Unassigned: []UnassignedMember{{MemberID: "c", Availability: map[Day][]int{Monday: {}}}},
	}

	out := sched.Clone()
	require.NotNil(t, out.Slots[0].Members)
	assert.Empty(t, out.Slots[0].Members)
	assert.NotNil(t, out.Locked)
	assert.NotNil(t, out.Unassigned[0].Availability[Monday])
	assert.Equal(t, sched, out)

	want, err := json.Marshal(sched)
	require.NoError(t, err)
	got, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.NotContains(t, string(got), "null")
}

func TestCloneIsDeep(t *testing.T) {
	sched := Schedule{
		Slots:      []Assignment{{Slot: SlotKey{Day: Monday, Time: 1}, Members: []string{"a"}}},
		Locked:     []Lock{{Slot: SlotKey{Day: Monday, Time: 1}, MemberID: "a"}},
		Unassigned: []UnassignedMember{{MemberID: "c", Availability: map[Day][]int{Friday: {2}}}},
	}

	out := sched.Clone()
	out.Slots[0].Members[0] = "z"
	out.Locked[0].MemberID = "z"
	out.Unassigned[0].Availability[Friday][0] = 9

	assert.Equal(t, "a", sched.Slots[0].Members[0])
	assert.Equal(t, "a", sched.Locked[0].MemberID)
	assert.Equal(t, []int{2}, sched.Unassigned[0].Availability[Friday])
}

func TestCloneKeepsNil(t *testing.T) {
	out := Schedule{}.Clone()
	assert.Nil(t, out.Slots)
	assert.Nil(t, out.Locked)
	assert.Nil(t, out.Unassigned)
}
