package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeCannonAdded     ActivityType = "cannon_added"
	TypeCannonDeleted   ActivityType = "cannon_deleted"
	TypeCannonsCleared  ActivityType = "cannons_cleared"
	TypeCannonsImported ActivityType = "cannons_imported"
	TypeCannonsSeeded   ActivityType = "cannons_seeded"
	TypeCannonsSynced   ActivityType = "cannons_synced"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	CannonID     *string      `json:"cannon_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
