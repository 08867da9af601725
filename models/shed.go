package models

type Shed struct {
	SyncBase
	FarmId   int    `gorm:"index;not null" json:"farm_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	ShedType string `gorm:"size:50" json:"shed_type"`
	Capacity int    `json:"capacity"`
}
