package storage

import "time"

const (
	PushStatusOK     = "ok"
	PushStatusFailed = "failed"
)

// PushLog records one scheduled push attempt for one group.
type PushLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RunID      string `gorm:"index;not null" json:"run_id"`
	GroupID    string `gorm:"index;not null" json:"group_id"`
	Trigger    string `json:"trigger"`
	Securities int    `json:"securities"`
	Status     string `gorm:"not null" json:"status"` // ok or failed
	Error      string `json:"error,omitempty"`
}
