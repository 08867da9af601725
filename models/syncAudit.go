package models

import (
	"context"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
)

// SyncDevice is the registry of mobile devices that have pushed or pulled.
type SyncDevice struct {
	ID         int        `gorm:"primary_key" json:"id"`
	UserId     int        `gorm:"uniqueIndex:idx_sync_device,priority:1;not null" json:"user_id"`
	DeviceId   string     `gorm:"uniqueIndex:idx_sync_device,priority:2;size:128;not null" json:"device_id"`
	Platform   string     `gorm:"size:20" json:"platform"`
	AppVersion string     `gorm:"size:20" json:"app_version"`
	LastPushAt *time.Time `json:"last_push_at"`
	LastPullAt *time.Time `json:"last_pull_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncRun is one push request's audit row.
type SyncRun struct {
	ID              int       `gorm:"primary_key" json:"id"`
	UserId          int       `gorm:"index;not null" json:"user_id"`
	DeviceId        string    `gorm:"size:128" json:"device_id"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	RecordsPushed   int       `json:"records_pushed"`
	RecordsAccepted int       `json:"records_accepted"`
	ErrorCount      int       `json:"error_count"`
	DurationMs      int64     `json:"duration_ms"`
	StatsJSON       []byte    `gorm:"type:json" json:"stats"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SyncError is one record's failure, kept for diagnostics. The client never
// sees these; it just retries anything missing from the accepted-id list.
type SyncError struct {
	ID          int       `gorm:"primary_key" json:"id"`
	SyncRunId   int       `gorm:"index" json:"sync_run_id"`
	UserId      int       `gorm:"index;not null" json:"user_id"`
	EntityType  string    `gorm:"size:50" json:"entity_type"`
	ClientId    string    `gorm:"size:64" json:"client_id"`
	Action      string    `gorm:"size:20" json:"action"`
	ErrorCode   string    `gorm:"size:64" json:"error_code"`
	Message     string    `gorm:"type:text" json:"message"`
	PayloadJSON []byte    `gorm:"type:json" json:"payload"`
	Retryable   bool      `gorm:"default:false" json:"retryable"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TouchSyncDevice upserts the device registry entry for a push or pull.
func TouchSyncDevice(ctx context.Context, userId int, deviceId, platform, appVersion string, push bool) error {
	if deviceId == "" {
		return nil
	}
	db := config.GetDB()
	now := time.Now()

	var device SyncDevice
	err := db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userId, deviceId).
		First(&device).Error
	if err != nil {
		device = SyncDevice{
			UserId:     userId,
			DeviceId:   deviceId,
			Platform:   platform,
			AppVersion: appVersion,
		}
		if push {
			device.LastPushAt = &now
		} else {
			device.LastPullAt = &now
		}
		return db.WithContext(ctx).Create(&device).Error
	}

	updates := map[string]interface{}{}
	if platform != "" {
		updates["platform"] = platform
	}
	if appVersion != "" {
		updates["app_version"] = appVersion
	}
	if push {
		updates["last_push_at"] = now
	} else {
		updates["last_pull_at"] = now
	}
	return db.WithContext(ctx).Model(&device).Updates(updates).Error
}

func CreateSyncError(ctx context.Context, runId int, userId int, entityType string, clientId string, action string, code string, message string, payload []byte, retryable bool) error {
	errRec := SyncError{
		SyncRunId:   runId,
		UserId:      userId,
		EntityType:  entityType,
		ClientId:    clientId,
		Action:      action,
		ErrorCode:   code,
		Message:     message,
		PayloadJSON: payload,
		Retryable:   retryable,
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&errRec).Error
}

func GetRecentSyncRuns(ctx context.Context, userId int, limit int) ([]*SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	db := config.GetDB()
	var runs []*SyncRun
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
