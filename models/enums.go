package models

type UserRole string

const (
	RoleFarmer UserRole = "farmer"
	RoleVet    UserRole = "vet"
	RoleAdmin  UserRole = "admin"
)

type LivestockStatus string

const (
	LivestockStatusActive  LivestockStatus = "active"
	LivestockStatusSold    LivestockStatus = "sold"
	LivestockStatusDead    LivestockStatus = "dead"
	LivestockStatusRemoved LivestockStatus = "removed"
)

type MilkSession string

const (
	MilkSessionMorning MilkSession = "morning"
	MilkSessionEvening MilkSession = "evening"
)

type PregnancyResult string

const (
	PregnancyResultPregnant PregnancyResult = "pregnant"
	PregnancyResultEmpty    PregnancyResult = "empty"
	PregnancyResultDoubtful PregnancyResult = "doubtful"
)

const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusPartial = "partial"
	SyncRunStatusFailed  = "failed"
)
