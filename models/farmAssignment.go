package models

import (
	"context"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
)

// FarmAssignment grants a vet write access to another farmer's farm.
type FarmAssignment struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FarmId    int       `gorm:"uniqueIndex:idx_farm_assignment,priority:1;not null" json:"farm_id"`
	UserId    int       `gorm:"uniqueIndex:idx_farm_assignment,priority:2;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func GetAssignedFarmIds(ctx context.Context, userId int) ([]int, error) {
	db := config.GetDB()
	var ids []int
	err := db.WithContext(ctx).
		Model(&FarmAssignment{}).
		Where("user_id = ?", userId).
		Order("farm_id").
		Pluck("farm_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
