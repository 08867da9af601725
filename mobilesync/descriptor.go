package mobilesync

import (
	"context"
	"time"

	"bitbucket.org/mmagritech/farm_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Env carries everything a collection needs for one sync call. Scope is a
// pointer because the orchestrator rebuilds it after the farms collection, so
// sheds and livestock pushed in the same request see farms created moments
// earlier.
type Env struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Notifier Notifier
	Resolver *Resolver
	Scope    *Scope
	Actor    Actor
	RunId    int
	Now      func() time.Time
}

// Descriptor declares how one entity type syncs. The generic processor owns
// the reconciliation loop; the descriptor owns everything entity-specific:
// which wire fields name parents, how a record decodes into a model row, and
// what a pull snapshot looks like.
type Descriptor[T any] struct {
	Type      EntityType
	Order     int
	PushRoles []models.UserRole

	// FarmRef / LivestockRef name the wire field carrying the owning parent's
	// clientId. Exactly one is set for everything except farms. Livestock-rooted
	// events inherit their farm from the referenced animal.
	FarmRef      string
	LivestockRef string

	// ExtraRefs are additional clientId references (shed, mother, destination
	// farm). Optional ones resolve to NULL when missing.
	ExtraRefs []RefSpec

	// Lookups are server-assigned reference ids validated against a lookup
	// table (vaccines, diseases).
	Lookups []LookupSpec

	// SoftDelete flips a status column instead of removing the row.
	SoftDelete bool

	Decode      func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (T, error)
	Updates     func(rec SyncRecord, refs ResolvedRefs) map[string]any
	View        func(row T, look *RefLookup) map[string]any
	AfterCreate func(ctx context.Context, env *Env, row T)
}

// Collection is the type-erased form of a Descriptor the orchestrator works
// with so descriptors of different row types can share one slice.
type Collection struct {
	Type      EntityType
	Order     int
	PushRoles []models.UserRole
	Process   func(ctx context.Context, env *Env, raws []map[string]any) []SyncOutcome
	Snapshot  func(ctx context.Context, env *Env, look *RefLookup) ([]map[string]any, error)
}

func (c Collection) AllowsPush(role string) bool {
	for _, r := range c.PushRoles {
		if string(r) == role {
			return true
		}
	}
	return false
}

func buildCollection[T any](d Descriptor[T]) Collection {
	return Collection{
		Type:      d.Type,
		Order:     d.Order,
		PushRoles: d.PushRoles,
		Process: func(ctx context.Context, env *Env, raws []map[string]any) []SyncOutcome {
			return processBatch(ctx, env, d, raws)
		},
		Snapshot: func(ctx context.Context, env *Env, look *RefLookup) ([]map[string]any, error) {
			return snapshotBatch(ctx, env, d, look)
		},
	}
}
