package models

// SolveRequest is the body of the solve endpoint
type SolveRequest struct {
	Roster Roster `json:"roster"`
	Days   []Day  `json:"days"`
	Locked []Lock `json:"locked"`
}

// ReoptimizeRequest re-solves around a lock set. A nil Locked keeps the schedule's own locks.
type ReoptimizeRequest struct {
	Roster   Roster   `json:"roster"`
	Schedule Schedule `json:"schedule"`
	Locked   *[]Lock  `json:"locked,omitempty"`
}

// MatchRequest asks for two members to be paired
type MatchRequest struct {
	Roster   Roster   `json:"roster"`
	Schedule Schedule `json:"schedule"`
	MemberA  string   `json:"member_a" binding:"required"`
	MemberB  string   `json:"member_b" binding:"required"`
	Force    bool     `json:"force"`
}

// PlacementRequest checks one member against one slot
type PlacementRequest struct {
	Roster   Roster   `json:"roster"`
	Schedule Schedule `json:"schedule"`
	MemberID string   `json:"member_id" binding:"required"`
	Slot     SlotKey  `json:"slot"`
}

// LockRequest sets the locked occupants of a slot
type LockRequest struct {
	Roster    Roster   `json:"roster"`
	Schedule  Schedule `json:"schedule"`
	Slot      SlotKey  `json:"slot"`
	MemberIDs []string `json:"member_ids"`
}

// ExportRequest renders a schedule for download
type ExportRequest struct {
	Roster   Roster   `json:"roster"`
	Schedule Schedule `json:"schedule"`
}

// SessionRequest saves the operator's working state
type SessionRequest struct {
	Name     string   `json:"name" binding:"required"`
	Roster   Roster   `json:"roster"`
	Schedule Schedule `json:"schedule"`
}

// ScheduleResponse is the data structure for every schedule-producing endpoint
type ScheduleResponse struct {
	Schedule      Schedule         `json:"schedule"`
	Warnings      []Warning        `json:"warnings,omitempty"`
	Conflicts     []ConflictReason `json:"conflicts,omitempty"`
	FairnessScore float64          `json:"fairness_score"`
}

// PairCandidate is one slot two members could share
type PairCandidate struct {
	Slot         SlotKey  `json:"slot"`
	Label        string   `json:"label"`
	GenderOK     bool     `json:"gender_ok"`
	PreferenceOK bool     `json:"preference_ok"`
	Displaces    []string `json:"displaces,omitempty"`
	Scarcity     int      `json:"scarcity"`
	Reason       string   `json:"reason"`
}
