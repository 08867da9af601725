package config

import (
	"os"
	"strings"
)

// SyncNotificationsEnabled gates the after-create notification side effects
// (transfer/birth notices). Disabled by default in test environments.
//
// Set via env:
// - SYNC_NOTIFICATIONS=true
func SyncNotificationsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SYNC_NOTIFICATIONS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SyncAuditEnabled controls whether each push writes a sync_runs audit row.
//
// Set via env:
// - SYNC_AUDIT=false (default true)
func SyncAuditEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SYNC_AUDIT")))
	if v == "" {
		return true
	}
	return v != "0" && v != "false" && v != "no" && v != "n"
}
