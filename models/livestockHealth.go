package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Health events. Vaccine/disease references are optional lookups: a record
// whose vaccine has not been synced yet still lands, with a NULL reference.

type Vaccination struct {
	SyncBase
	FarmId      int       `gorm:"index;not null" json:"farm_id"`
	LivestockId int       `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time `json:"event_date"`
	VaccineId   *int      `gorm:"index" json:"vaccine_id"`
	VaccineName string    `gorm:"size:100" json:"vaccine_name"`
	Dose        string    `gorm:"size:50" json:"dose"`
	VetName     string    `gorm:"size:100" json:"vet_name"`
}

type Deworming struct {
	SyncBase
	FarmId       int       `gorm:"index;not null" json:"farm_id"`
	LivestockId  int       `gorm:"index;not null" json:"livestock_id"`
	EventDate    time.Time `json:"event_date"`
	MedicineName string    `gorm:"size:100" json:"medicine_name"`
	Dose         string    `gorm:"size:50" json:"dose"`
}

type Treatment struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	LivestockId int             `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time       `json:"event_date"`
	DiseaseId   *int            `gorm:"index" json:"disease_id"`
	Diagnosis   string          `gorm:"size:255" json:"diagnosis"`
	Medicine    string          `gorm:"size:100" json:"medicine"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost"`
}

type PregnancyCheck struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	LivestockId int             `gorm:"index;not null" json:"livestock_id"`
	EventDate   time.Time       `json:"event_date"`
	Result      PregnancyResult `gorm:"type:enum('pregnant', 'empty', 'doubtful')" json:"result"`
	Method      string          `gorm:"size:50" json:"method"`
}
