// seed-admin creates or updates the platform admin user and loads the
// vaccine/disease/township reference tables.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

const (
	adminUsername = "farmAdmin"
	adminName     = "Farm Admin"
)

var vaccines = []models.Vaccine{
	{Name: "Foot and Mouth Disease", Species: "cattle"},
	{Name: "Hemorrhagic Septicemia", Species: "cattle"},
	{Name: "Black Quarter", Species: "cattle"},
	{Name: "Anthrax", Species: "cattle"},
	{Name: "Brucellosis", Species: "cattle"},
	{Name: "PPR", Species: "goat"},
	{Name: "Enterotoxemia", Species: "goat"},
}

var diseases = []models.Disease{
	{Name: "Foot and Mouth Disease", Species: "cattle"},
	{Name: "Mastitis", Species: "cattle"},
	{Name: "Lumpy Skin Disease", Species: "cattle"},
	{Name: "Milk Fever", Species: "cattle"},
	{Name: "Bloat", Species: "cattle"},
	{Name: "PPR", Species: "goat"},
}

var townships = []models.Township{
	{Name: "Pyinmana", Region: "Naypyidaw"},
	{Name: "Tatkon", Region: "Naypyidaw"},
	{Name: "Meiktila", Region: "Mandalay"},
	{Name: "Kyaukse", Region: "Mandalay"},
	{Name: "Pyawbwe", Region: "Mandalay"},
	{Name: "Taungoo", Region: "Bago"},
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipFarmScopeInContext(ctx, true)

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		u := models.User{
			Username: adminUsername,
			Name:     adminName,
			Password: string(hashed),
			Role:     models.RoleAdmin,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q\n", adminUsername)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	default:
		err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).Updates(map[string]any{
			"password": string(hashed),
			"name":     adminName,
			"role":     models.RoleAdmin,
		}).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated admin user: username=%q\n", adminUsername)
	}

	seedReferenceData(ctx, db)
}

func seedReferenceData(ctx context.Context, db *gorm.DB) {
	for _, v := range vaccines {
		err := db.WithContext(ctx).Where("name = ?", v.Name).FirstOrCreate(&models.Vaccine{}, v).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed vaccine %q: %v\n", v.Name, err)
		}
	}
	for _, d := range diseases {
		err := db.WithContext(ctx).Where("name = ?", d.Name).FirstOrCreate(&models.Disease{}, d).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed disease %q: %v\n", d.Name, err)
		}
	}
	for _, t := range townships {
		err := db.WithContext(ctx).Where("name = ? AND region = ?", t.Name, t.Region).FirstOrCreate(&models.Township{}, t).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed township %q: %v\n", t.Name, err)
		}
	}
	fmt.Println("Reference data seeded")
}
