package run

import (
	"time"

	"gorm.io/datatypes"
)

// BatchRun is the persisted lifecycle record of one sync run.
type BatchRun struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// TableName maps BatchRun onto the batch_runs table.
func (BatchRun) TableName() string {
	return "batch_runs"
}

// BatchItem is one per-fixture outcome within a run.
type BatchItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BatchID string `gorm:"index;size:36" json:"batch_id"`
	ItemKey string `gorm:"size:64" json:"item_key"`
	Outcome string `gorm:"size:16" json:"outcome"`

	Error    *string        `gorm:"size:500" json:"error,omitempty"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName maps BatchItem onto the batch_items table.
func (BatchItem) TableName() string {
	return "batch_items"
}
