package models

import "time"

// SyncBase is embedded by every row that mobile clients author offline.
//
// ClientId is the device-generated identifier and the dedup key: at most one
// row per (table, client_id). It is never rewritten once assigned.
//
// CreatedAt/UpdatedAt are engine-managed, NOT gorm-managed: updated_at is the
// last-writer-wins ordinate and only moves when a write is actually applied,
// so the auto-timestamp behavior is disabled.
type SyncBase struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ClientId  string    `gorm:"size:64;uniqueIndex;not null" json:"client_id"`
	FarmerId  int       `gorm:"index;not null" json:"farmer_id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
