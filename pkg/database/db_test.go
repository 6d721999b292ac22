package database

import (
	"path/filepath"
	"testing"

	"github.com/arnavshah/tabling-scheduler/pkg/config"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.Default()
	cfg.DataPath = filepath.Join(t.TempDir(), "test.db")
	db, err := InitDB(cfg)
	require.NoError(t, err)
	return db
}

func TestTouchKey(t *testing.T) {
	db := testDB(t)

	first, err := TouchKey(db, "alice.0123456789abcdef", "alice", 500)
	require.NoError(t, err)
	require.NotNil(t, first.LastUsed)
	assert.Equal(t, "ali...cdef", first.KeyPreview)

	again, err := TouchKey(db, "alice.0123456789abcdef", "ignored", 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "alice", again.Name)
	assert.Equal(t, 500, again.RateLimit)

	var count int64
	db.Model(&APIKey{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecordUsageUpserts(t *testing.T) {
	db := testDB(t)
	key, err := TouchKey(db, "bob.ffff0000ffff0000", "bob", 10)
	require.NoError(t, err)

	require.NoError(t, RecordUsage(db, key.ID, 20, 12))
	require.NoError(t, RecordUsage(db, key.ID, 20, 14))

	usage, err := UsageHistory(db, key.ID)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].RequestCount)
	assert.Equal(t, 40, usage[0].TotalSlots)
	assert.Equal(t, 26, usage[0].TotalMembers)
}

func TestSessions(t *testing.T) {
	db := testDB(t)
	r := models.Roster{
		Members: []models.Member{{
			ID: "ana", Name: "Ana", Gender: models.Female,
			Availability: map[models.Day][]int{models.Monday: {0, 2}},
		}},
		Excluded: []string{"ana"},
	}
	s := models.Schedule{
		Days:   []models.Day{models.Monday},
		Times:  models.DefaultTimes,
		Locked: []models.Lock{{Slot: models.SlotKey{Day: models.Monday, Time: 2}, MemberID: "ana"}},
	}

	saved, err := SaveSession(db, 1, "week 3", r, s)
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)

	_, err = SaveSession(db, 2, "someone else", r, s)
	require.NoError(t, err)

	list, err := ListSessions(db, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "week 3", list[0].Name)
	assert.Empty(t, list[0].Roster, "listing omits the payload")

	got, gotRoster, gotSchedule, err := LoadSession(db, 1, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, r, gotRoster)
	assert.Equal(t, s.Locked, gotSchedule.Locked)
	assert.Equal(t, s.Days, gotSchedule.Days)

	_, _, _, err = LoadSession(db, 2, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, DeleteSession(db, 2, saved.ID), ErrNotFound)
	require.NoError(t, DeleteSession(db, 1, saved.ID))
	_, _, _, err = LoadSession(db, 1, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "****", Preview("short"))
	assert.Equal(t, "abc...6789", Preview("abcdef.0123456789"))
}
