package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is the only farm-level event type: no livestock reference.
type Expense struct {
	SyncBase
	FarmId     int             `gorm:"index;not null" json:"farm_id"`
	EventDate  time.Time       `json:"event_date"`
	Category   string          `gorm:"size:100" json:"category"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	BillNumber string          `gorm:"size:100" json:"bill_number"`
	Note       string          `gorm:"size:255" json:"note"`
}
