package mobilesync

import (
	"time"
)

// EntityType names one synced collection in a push/pull request.
type EntityType string

const (
	EntityFarms     EntityType = "farms"
	EntitySheds     EntityType = "sheds"
	EntityLivestock EntityType = "livestock"

	EntityBirths          EntityType = "births"
	EntityDeaths          EntityType = "deaths"
	EntityTransfers       EntityType = "transfers"
	EntitySales           EntityType = "sales"
	EntityVaccinations    EntityType = "vaccinations"
	EntityDewormings      EntityType = "dewormings"
	EntityTreatments      EntityType = "treatments"
	EntityPregnancyChecks EntityType = "pregnancyChecks"
	EntityMilkings        EntityType = "milkings"
	EntityWeights         EntityType = "weights"
	EntityInseminations   EntityType = "inseminations"
	EntityDryOffs         EntityType = "dryOffs"
	EntityHeats           EntityType = "heats"
	EntityExpenses        EntityType = "expenses"
)

type SyncAction string

const (
	ActionCreate  SyncAction = "create"
	ActionUpdate  SyncAction = "update"
	ActionDeleted SyncAction = "deleted"
)

// SyncRecord is one client-authored record from a push batch, after wire
// decoding. Fields holds everything entity-specific, owner references
// included; the generic engine never interprets them itself.
type SyncRecord struct {
	ClientId        string
	Action          SyncAction
	ClientCreatedAt time.Time
	ClientUpdatedAt time.Time
	Fields          map[string]any
}

// DecodeRecord normalizes one raw record map. Missing timestamps default to
// now (server time), and the action defaults to create, matching the mobile
// client's oldest payload shape.
func DecodeRecord(raw map[string]any, now time.Time) SyncRecord {
	rec := SyncRecord{
		ClientId: StringField(raw, "clientId"),
		Action:   SyncAction(StringField(raw, "syncAction")),
		Fields:   raw,
	}
	if rec.Action == "" {
		rec.Action = ActionCreate
	}
	rec.ClientCreatedAt = ParseClientTime(raw["clientCreatedAt"], now)
	rec.ClientUpdatedAt = ParseClientTime(raw["clientUpdatedAt"], rec.ClientCreatedAt)
	return rec
}

// SyncOutcome is the per-record verdict. Reason is server-side diagnostics
// only; the client just sees presence/absence in the accepted-id list.
type SyncOutcome struct {
	ClientId string
	Accepted bool
	Reason   string
}

// Skip/error reasons recorded to sync_errors.
const (
	ReasonMissingIdentity     = "missing identity"
	ReasonUnresolvedReference = "unresolved reference"
	ReasonUnsupportedAction   = "unsupported action"
	ReasonOutOfScope          = "out of scope"
	ReasonStorageFault        = "storage fault"
	ReasonBadPayload          = "bad payload"
)

type PushRequest struct {
	DeviceId      string                      `json:"deviceId"`
	Platform      string                      `json:"platform"`
	AppVersion    string                      `json:"appVersion"`
	EntityBatches map[EntityType][]map[string]any `json:"entityBatches"`
}

type AcceptedId struct {
	ClientId string `json:"clientId"`
}

// PushResult lists only accepted identifiers per entity type. A record absent
// from its list stays flagged unsynced on the device and is retried on the
// next push.
type PushResult map[EntityType][]AcceptedId

// PullResult is the authoritative snapshot per entity type for the caller's
// ownership scope.
type PullResult map[EntityType][]map[string]any
