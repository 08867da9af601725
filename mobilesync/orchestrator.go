package mobilesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/models"
)

// ErrUnauthenticated is the only batch-level failure a push can produce.
// Everything after authentication degrades per record.
var ErrUnauthenticated = errors.New("unauthenticated sync actor")

// Engine runs push and pull reconciliation for every registered collection.
type Engine struct {
	db          *gorm.DB
	logger      *logrus.Logger
	notifier    Notifier
	locker      *redislock.Client
	collections []Collection
	now         func() time.Time
}

// NewEngine wires the registry in dependency order. locker may be nil; the
// push lock is then skipped (single-node deployments, tests).
func NewEngine(db *gorm.DB, logger *logrus.Logger, notifier Notifier, locker *redislock.Client) *Engine {
	cols := Registry()
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Order < cols[j].Order })
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Engine{
		db:          db,
		logger:      logger,
		notifier:    notifier,
		locker:      locker,
		collections: cols,
		now:         time.Now,
	}
}

// PushSync reconciles one device's batch. Collections process in dependency
// order; the ownership scope is rebuilt after farms so a farm and its herd
// pushed together both land. Returns the accepted clientIds per collection.
func (e *Engine) PushSync(ctx context.Context, actor Actor, req PushRequest) (PushResult, error) {
	if actor.ID == 0 {
		return nil, ErrUnauthenticated
	}
	started := e.now()

	// Two devices of the same farmer pushing at once interleave badly on the
	// clientId unique index; serialize them. Lock loss is tolerated: the
	// index still protects correctness, the lock just avoids noisy retries.
	if e.locker != nil {
		lockKey := fmt.Sprintf("sync:push:%d", actor.ID)
		lock, err := e.locker.Obtain(ctx, lockKey, 60*time.Second, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(250 * time.Millisecond),
		})
		if err != nil {
			config.LogError(e.logger, "mobilesync", "PushSync", lockKey, nil, err)
		} else {
			defer func() { _ = lock.Release(context.Background()) }()
		}
	}

	scope, err := BuildScope(ctx, e.db, actor)
	if err != nil {
		return nil, err
	}

	runId := 0
	if config.SyncAuditEnabled() {
		run := models.SyncRun{
			UserId:   actor.ID,
			DeviceId: req.DeviceId,
			Status:   models.SyncRunStatusRunning,
		}
		if err := e.db.WithContext(ctx).Create(&run).Error; err == nil {
			runId = run.ID
		} else {
			config.LogError(e.logger, "mobilesync", "PushSync", "create sync run", nil, err)
		}
	}

	env := &Env{
		DB:       e.db,
		Logger:   e.logger,
		Notifier: e.notifier,
		Resolver: NewResolver(e.db),
		Scope:    &scope,
		Actor:    actor,
		RunId:    runId,
		Now:      e.now,
	}

	acc := NewAccumulator()
	for _, col := range e.collections {
		raws, ok := req.EntityBatches[col.Type]
		if !ok {
			continue
		}
		if !col.AllowsPush(actor.Role) {
			acc.Drop(col.Type)
			config.LogError(e.logger, "mobilesync", "PushSync", string(col.Type), nil,
				fmt.Errorf("role %q may not push collection", actor.Role))
			continue
		}
		acc.Add(col.Type, col.Process(ctx, env, raws))

		// Farms created in this push extend the scope for everything after.
		if col.Type == EntityFarms {
			if rebuilt, err := BuildScope(ctx, e.db, actor); err == nil {
				*env.Scope = rebuilt
			} else {
				config.LogError(e.logger, "mobilesync", "PushSync", "rebuild scope", nil, err)
			}
		}
	}

	if runId != 0 {
		stats, _ := json.Marshal(acc.Stats())
		updates := map[string]any{
			"status":           acc.Status(),
			"records_pushed":   acc.Pushed,
			"records_accepted": acc.Accepted,
			"error_count":      acc.Errors,
			"duration_ms":      e.now().Sub(started).Milliseconds(),
			"stats_json":       stats,
		}
		err := e.db.WithContext(ctx).
			Model(&models.SyncRun{}).
			Where("id = ?", runId).
			Updates(updates).Error
		if err != nil {
			config.LogError(e.logger, "mobilesync", "PushSync", "finalize sync run", nil, err)
		}
	}
	if err := models.TouchSyncDevice(ctx, actor.ID, req.DeviceId, req.Platform, req.AppVersion, true); err != nil {
		config.LogError(e.logger, "mobilesync", "PushSync", "touch device", nil, err)
	}
	return acc.Result, nil
}

// PullSync returns the authoritative snapshot of every collection within the
// actor's ownership scope.
func (e *Engine) PullSync(ctx context.Context, actor Actor, deviceId string) (PullResult, error) {
	if actor.ID == 0 {
		return nil, ErrUnauthenticated
	}
	scope, err := BuildScope(ctx, e.db, actor)
	if err != nil {
		return nil, err
	}
	env := &Env{
		DB:       e.db,
		Logger:   e.logger,
		Notifier: e.notifier,
		Resolver: NewResolver(e.db),
		Scope:    &scope,
		Actor:    actor,
		Now:      e.now,
	}
	look, err := BuildRefLookup(ctx, env)
	if err != nil {
		return nil, err
	}

	result := PullResult{}
	for _, col := range e.collections {
		views, err := col.Snapshot(ctx, env, look)
		if err != nil {
			return nil, err
		}
		result[col.Type] = views
	}
	if err := models.TouchSyncDevice(ctx, actor.ID, deviceId, "", "", false); err != nil {
		config.LogError(e.logger, "mobilesync", "PullSync", "touch device", nil, err)
	}
	return result, nil
}
