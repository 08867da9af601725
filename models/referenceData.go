package models

import (
	"context"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
)

// Server-curated lookup tables. These are plain read endpoints for clients;
// they have no conflict or write semantics and are not part of the sync engine.

type Vaccine struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name"`
	Species   string    `gorm:"size:50" json:"species"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Disease struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name"`
	Species   string    `gorm:"size:50" json:"species"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Township struct {
	ID     int    `gorm:"primary_key" json:"id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Region string `gorm:"size:100" json:"region"`
}

func GetVaccines(ctx context.Context) ([]*Vaccine, error) {
	db := config.GetDB()
	var results []*Vaccine
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetDiseases(ctx context.Context) ([]*Disease, error) {
	db := config.GetDB()
	var results []*Disease
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetTownships(ctx context.Context) ([]*Township, error) {
	db := config.GetDB()
	var results []*Township
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
