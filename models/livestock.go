package models

import (
	"context"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
)

type Livestock struct {
	SyncBase
	FarmId      int             `gorm:"index;not null" json:"farm_id"`
	ShedId      *int            `gorm:"index" json:"shed_id"`
	MotherId    *int            `gorm:"index" json:"mother_id"`
	TagNumber   string          `gorm:"size:50" json:"tag_number"`
	Name        string          `gorm:"size:100" json:"name"`
	Species     string          `gorm:"size:50" json:"species"`
	Breed       string          `gorm:"size:100" json:"breed"`
	Gender      string          `gorm:"size:10" json:"gender"`
	Color       string          `gorm:"size:50" json:"color"`
	DateOfBirth *time.Time      `json:"date_of_birth"`
	PhotoUrl    string          `gorm:"size:512" json:"photo_url"`
	Status      LivestockStatus `gorm:"type:enum('active', 'sold', 'dead', 'removed');default:'active'" json:"status"`
}

// TableName keeps the uncountable noun; the default pluralizer would
// produce "livestocks".
func (Livestock) TableName() string { return "livestock" }

// GetLivestockFarm returns the owning farm of a livestock row.
func GetLivestockFarm(ctx context.Context, livestockId int) (int, error) {
	db := config.GetDB()
	var farmId int
	err := db.WithContext(ctx).
		Model(&Livestock{}).
		Where("id = ?", livestockId).
		Pluck("farm_id", &farmId).Error
	if err != nil {
		return 0, err
	}
	return farmId, nil
}

// SetLivestockPhoto stores the uploaded photo URL without touching updated_at,
// so a photo upload never loses a later LWW comparison for the client's fields.
func SetLivestockPhoto(ctx context.Context, livestockId int, url string) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Model(&Livestock{}).
		Where("id = ?", livestockId).
		UpdateColumn("photo_url", url).Error
}
