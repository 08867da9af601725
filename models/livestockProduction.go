package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production and breeding events.

type Milking struct {
	SyncBase
	FarmId         int             `gorm:"index;not null" json:"farm_id"`
	LivestockId    int             `gorm:"index;not null" json:"livestock_id"`
	EventDate      time.Time       `json:"event_date"`
	Session        MilkSession     `gorm:"type:enum('morning', 'evening')" json:"session"`
	QuantityLiters decimal.Decimal `gorm:"type:decimal(8,2)" json:"quantity_liters"`
}

type Weight struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	LivestockId int             `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time       `json:"event_date"`
	WeightKg    decimal.Decimal `gorm:"type:decimal(8,2)" json:"weight_kg"`
}

type Insemination struct {
	SyncBase
	FarmId      int       `gorm:"index;not null" json:"farm_id"`
	LivestockId int       `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time `json:"event_date"`
	SemenCode   string    `gorm:"size:100" json:"semen_code"`
	Technician  string    `gorm:"size:100" json:"technician"`
}

type DryOff struct {
	SyncBase
	FarmId              int        `gorm:"index;not null" json:"farm_id"`
	LivestockId         int        `gorm:"index;not null" json:"livestock_id"`
	EventDate           time.Time  `json:"event_date"`
	ExpectedCalvingDate *time.Time `json:"expected_calving_date"`
}

type Heat struct {
	SyncBase
	FarmId      int       `gorm:"index;not null" json:"farm_id"`
	LivestockId int       `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time `json:"event_date"`
	Sign        string    `gorm:"size:255" json:"sign"`
	Note        string    `gorm:"size:255" json:"note"`
}
