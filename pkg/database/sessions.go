package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedSession is an operator's saved working state: the roster (with its
// exclusions and overrides) and the schedule being edited.
type SavedSession struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	KeyID     uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Roster    string    `gorm:"type:text" json:"-"`
	Schedule  string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveSession stores a new session owned by keyID
func SaveSession(db *gorm.DB, keyID uint, name string, r models.Roster, s models.Schedule) (*SavedSession, error) {
	rosterJSON, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	scheduleJSON, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	session := &SavedSession{
		ID:       uuid.NewString(),
		KeyID:    keyID,
		Name:     name,
		Roster:   string(rosterJSON),
		Schedule: string(scheduleJSON),
	}
	if err := db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns the sessions owned by keyID, most recently updated first
func ListSessions(db *gorm.DB, keyID uint) ([]SavedSession, error) {
	var sessions []SavedSession
	err := db.Select("id", "key_id", "name", "created_at", "updated_at").
		Where("key_id = ?", keyID).
		Order("updated_at desc").
		Find(&sessions).Error
	return sessions, err
}

// LoadSession decodes a session owned by keyID
func LoadSession(db *gorm.DB, keyID uint, id string) (*SavedSession, models.Roster, models.Schedule, error) {
	var session SavedSession
	err := db.Where("id = ? AND key_id = ?", id, keyID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Roster{}, models.Schedule{}, ErrNotFound
	}
	if err != nil {
		return nil, models.Roster{}, models.Schedule{}, err
	}

	var r models.Roster
	if err := json.Unmarshal([]byte(session.Roster), &r); err != nil {
		return nil, models.Roster{}, models.Schedule{}, fmt.Errorf("decode roster of session %s: %w", id, err)
	}
	var s models.Schedule
	if err := json.Unmarshal([]byte(session.Schedule), &s); err != nil {
		return nil, models.Roster{}, models.Schedule{}, fmt.Errorf("decode schedule of session %s: %w", id, err)
	}
	return &session, r, s, nil
}

// DeleteSession removes a session owned by keyID
func DeleteSession(db *gorm.DB, keyID uint, id string) error {
	res := db.Where("id = ? AND key_id = ?", id, keyID).Delete(&SavedSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
