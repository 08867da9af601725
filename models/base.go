package models

import (
	"log"

	"bitbucket.org/mmagritech/farm_backend/config"
)

// MigrateTable automigrates every table. Order matters only for readability;
// gorm creates missing tables and columns idempotently.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		// accounts and access
		&User{},
		&FarmAssignment{},

		// reference data
		&Vaccine{},
		&Disease{},
		&Township{},

		// synced aggregates
		&Farm{},
		&Shed{},
		&Livestock{},

		// synced events
		&Birth{},
		&Death{},
		&Transfer{},
		&Sale{},
		&Vaccination{},
		&Deworming{},
		&Treatment{},
		&PregnancyCheck{},
		&Milking{},
		&Weight{},
		&Insemination{},
		&DryOff{},
		&Heat{},
		&Expense{},

		// sync bookkeeping
		&SyncDevice{},
		&SyncRun{},
		&SyncError{},
	)
	if err != nil {
		log.Printf("automigrate failed: %v", err)
	}
}
