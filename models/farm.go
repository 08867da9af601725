package models

import (
	"context"

	"bitbucket.org/mmagritech/farm_backend/config"
)

type Farm struct {
	SyncBase
	Name       string  `gorm:"size:100;not null" json:"name"`
	Address    string  `gorm:"size:255" json:"address"`
	TownshipId *int    `gorm:"index" json:"township_id"`
	Phone      string  `gorm:"size:20" json:"phone"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// GetFarmIdsByFarmer returns the ownership scope roots for a farmer,
// ordered oldest-first so index 0 is the home farm.
func GetFarmIdsByFarmer(ctx context.Context, farmerId int) ([]int, error) {
	db := config.GetDB()
	var ids []int
	err := db.WithContext(ctx).
		Model(&Farm{}).
		Where("farmer_id = ?", farmerId).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func GetFarmOwner(ctx context.Context, farmId int) (int, error) {
	db := config.GetDB()
	var farmerId int
	err := db.WithContext(ctx).
		Model(&Farm{}).
		Where("id = ?", farmId).
		Pluck("farmer_id", &farmerId).Error
	if err != nil {
		return 0, err
	}
	return farmerId, nil
}
