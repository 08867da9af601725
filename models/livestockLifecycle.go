package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle events recorded against a single animal.

type Birth struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	LivestockId int             `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time       `json:"event_date"`
	CalfTag     string          `gorm:"size:50" json:"calf_tag"`
	CalfGender  string          `gorm:"size:10" json:"calf_gender"`
	BirthWeight decimal.Decimal `gorm:"type:decimal(8,2)" json:"birth_weight"`
	Note        string          `gorm:"size:255" json:"note"`
}

type Death struct {
	SyncBase
	FarmId      int       `gorm:"index;not null" json:"farm_id"`
	LivestockId int       `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time `json:"event_date"`
	Cause       string    `gorm:"size:255" json:"cause"`
	Note        string    `gorm:"size:255" json:"note"`
}

// Transfer records an animal moving between farms. FarmId is the source farm
// (the pushing actor's scope); ToFarmId may belong to a different farmer.
type Transfer struct {
	SyncBase
	FarmId      int       `gorm:"index;not null" json:"farm_id"`
	LivestockId int       `gorm:"index;not null" json:"livestock_id"`
	ToFarmId    int       `gorm:"index;not null" json:"to_farm_id"`
	EventDate   time.Time `json:"event_date"`
	Note        string    `gorm:"size:255" json:"note"`
}

type Sale struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	LivestockId int             `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time       `json:"event_date"`
	BuyerName   string          `gorm:"size:100" json:"buyer_name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Note        string          `gorm:"size:255" json:"note"`
}
