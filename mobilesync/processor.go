package mobilesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

// rowHead is the slice of a stored row the reconciliation decision needs:
// existence, the last-writer-wins ordinate, and the owning farmer.
type rowHead struct {
	ID        int
	FarmerId  int
	UpdatedAt time.Time
}

func loadHead(ctx context.Context, env *Env, table string, clientId string) (rowHead, bool, error) {
	var head rowHead
	err := env.DB.WithContext(ctx).
		Table(table).
		Select("id, farmer_id, updated_at").
		Where("client_id = ?", clientId).
		Limit(1).
		Scan(&head).Error
	if err != nil {
		return head, false, err
	}
	return head, head.ID != 0, nil
}

// processBatch reconciles one entity type's records in submission order. A
// record failing never aborts the batch; it is recorded and the loop moves on.
func processBatch[T any](ctx context.Context, env *Env, d Descriptor[T], raws []map[string]any) []SyncOutcome {
	outcomes := make([]SyncOutcome, 0, len(raws))
	table := tableByEntity[d.Type]
	for _, raw := range raws {
		outcomes = append(outcomes, processOne(ctx, env, d, table, raw))
	}
	return outcomes
}

func processOne[T any](ctx context.Context, env *Env, d Descriptor[T], table string, raw map[string]any) (out SyncOutcome) {
	rec := DecodeRecord(raw, env.Now())
	out = SyncOutcome{ClientId: rec.ClientId}

	defer func() {
		if r := recover(); r != nil {
			out = SyncOutcome{ClientId: rec.ClientId, Reason: ReasonStorageFault}
			recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, fmt.Errorf("panic: %v", r), true)
		}
	}()

	if !utils.IsValidClientId(rec.ClientId) {
		recordFailure(ctx, env, d.Type, rec, raw, ReasonMissingIdentity, errors.New("record has no usable clientId"), false)
		out.Reason = ReasonMissingIdentity
		return out
	}

	switch rec.Action {
	case ActionCreate, ActionUpdate, ActionDeleted:
	default:
		recordFailure(ctx, env, d.Type, rec, raw, ReasonUnsupportedAction, fmt.Errorf("action %q", rec.Action), false)
		out.Reason = ReasonUnsupportedAction
		return out
	}

	head, found, err := loadHead(ctx, env, table, rec.ClientId)
	if err != nil {
		recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, err, true)
		out.Reason = ReasonStorageFault
		return out
	}

	// Deletes never need parent resolution and are idempotent: deleting what
	// is already gone is a success the device must not keep retrying.
	if rec.Action == ActionDeleted {
		if !found {
			out.Accepted = true
			return out
		}
		if !env.Scope.CanTouchOwner(head.FarmerId) {
			recordFailure(ctx, env, d.Type, rec, raw, ReasonOutOfScope, fmt.Errorf("row owned by farmer %d", head.FarmerId), false)
			out.Reason = ReasonOutOfScope
			return out
		}
		if err := applyDelete[T](ctx, env, d, table, head, rec); err != nil {
			recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, err, true)
			out.Reason = ReasonStorageFault
			return out
		}
		out.Accepted = true
		return out
	}

	refs, farmId, err := resolveOwnership(ctx, env, d, rec)
	if errors.Is(err, ErrUnresolvedReference) {
		recordFailure(ctx, env, d.Type, rec, raw, ReasonUnresolvedReference, err, false)
		out.Reason = ReasonUnresolvedReference
		return out
	}
	if err != nil {
		recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, err, true)
		out.Reason = ReasonStorageFault
		return out
	}

	if found {
		if !env.Scope.CanTouchOwner(head.FarmerId) {
			recordFailure(ctx, env, d.Type, rec, raw, ReasonOutOfScope, fmt.Errorf("row owned by farmer %d", head.FarmerId), false)
			out.Reason = ReasonOutOfScope
			return out
		}
		if !CandidateWins(head.UpdatedAt.UTC(), rec.ClientUpdatedAt) {
			// Stored state is at least as fresh. The record is still
			// acknowledged so the device stops resending it.
			out.Accepted = true
			return out
		}
		updates := d.Updates(rec, refs)
		updates["updated_at"] = rec.ClientUpdatedAt
		err := env.DB.WithContext(ctx).
			Table(table).
			Where("id = ?", head.ID).
			Updates(updates).Error
		if err != nil {
			recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, err, true)
			out.Reason = ReasonStorageFault
			return out
		}
		out.Accepted = true
		return out
	}

	// An update for a row that was never created reaches us when the create
	// was lost or the row was deleted from another device. Acknowledge it so
	// the device stops retrying a write that can no longer land.
	if rec.Action == ActionUpdate {
		out.Accepted = true
		return out
	}

	owner := env.Actor.ID
	if d.Type != EntityFarms {
		owner = env.Scope.OwnerOf(farmId)
	}
	base := models.SyncBase{
		ClientId:  rec.ClientId,
		FarmerId:  owner,
		CreatedAt: rec.ClientCreatedAt,
		UpdatedAt: rec.ClientUpdatedAt,
	}
	row, err := d.Decode(rec, refs, base)
	if err != nil {
		recordFailure(ctx, env, d.Type, rec, raw, ReasonBadPayload, err, false)
		out.Reason = ReasonBadPayload
		return out
	}
	if err := env.DB.WithContext(ctx).Create(&row).Error; err != nil {
		// Includes the unique-index race when two devices insert the same
		// clientId concurrently; the loser retries as an update next push.
		recordFailure(ctx, env, d.Type, rec, raw, ReasonStorageFault, err, true)
		out.Reason = ReasonStorageFault
		return out
	}
	if d.AfterCreate != nil {
		d.AfterCreate(ctx, env, row)
	}
	out.Accepted = true
	return out
}

func applyDelete[T any](ctx context.Context, env *Env, d Descriptor[T], table string, head rowHead, rec SyncRecord) error {
	if d.SoftDelete {
		return env.DB.WithContext(ctx).
			Table(table).
			Where("id = ?", head.ID).
			Updates(map[string]any{
				"status":     models.LivestockStatusRemoved,
				"updated_at": rec.ClientUpdatedAt,
			}).Error
	}
	return env.DB.WithContext(ctx).Delete(new(T), head.ID).Error
}

// resolveOwnership resolves the owning parent plus any extra references,
// returning the farm the record lands in. A farm reference outside the
// actor's scope is overridden to the home farm; an animal outside the scope
// is rejected outright.
func resolveOwnership[T any](ctx context.Context, env *Env, d Descriptor[T], rec SyncRecord) (ResolvedRefs, int, error) {
	refs := ResolvedRefs{}
	farmId := 0

	switch {
	case d.Type == EntityFarms:
		// Farms belong to the actor directly.
	case d.LivestockRef != "":
		cid := StringField(rec.Fields, d.LivestockRef)
		id, fid, err := env.Resolver.ResolveOwned(ctx, EntityLivestock, cid)
		if err != nil {
			return nil, 0, err
		}
		if !env.Scope.HasFarm(fid) {
			return nil, 0, fmt.Errorf("%w: livestock %s", ErrUnresolvedReference, cid)
		}
		refs[d.LivestockRef] = id
		// Events inherit the animal's farm; descriptors read it under the
		// same key farm-rooted entities use.
		refs["farmClientId"] = fid
		farmId = fid
	case d.FarmRef != "":
		cid := StringField(rec.Fields, d.FarmRef)
		id, err := env.Resolver.Resolve(ctx, EntityFarms, cid)
		if err != nil {
			return nil, 0, err
		}
		if !env.Scope.HasFarm(id) {
			id = env.Scope.HomeFarm()
			if id == 0 {
				return nil, 0, fmt.Errorf("%w: no farm in scope", ErrUnresolvedReference)
			}
		}
		refs[d.FarmRef] = id
		farmId = id
	}

	for _, spec := range d.ExtraRefs {
		cid := StringField(rec.Fields, spec.Field)
		if cid == "" {
			if spec.Required {
				return nil, 0, fmt.Errorf("%w: %s missing", ErrUnresolvedReference, spec.Field)
			}
			continue
		}
		id, err := env.Resolver.Resolve(ctx, spec.Target, cid)
		if errors.Is(err, ErrUnresolvedReference) {
			if spec.Required {
				return nil, 0, fmt.Errorf("%w: %s=%s", ErrUnresolvedReference, spec.Field, cid)
			}
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		refs[spec.Field] = id
	}

	for _, spec := range d.Lookups {
		id := IntField(rec.Fields, spec.Field)
		if p := env.Resolver.LookupRef(ctx, spec.Table, id); p != nil {
			refs[spec.Field] = *p
		}
	}
	return refs, farmId, nil
}

func recordFailure(ctx context.Context, env *Env, entity EntityType, rec SyncRecord, raw map[string]any, code string, err error, retryable bool) {
	config.LogError(env.Logger, "mobilesync", "processOne", string(entity)+"/"+rec.ClientId, nil, err)
	if !config.SyncAuditEnabled() {
		return
	}
	payload, _ := json.Marshal(raw)
	_ = models.CreateSyncError(ctx, env.RunId, env.Actor.ID, string(entity), rec.ClientId, string(rec.Action), code, err.Error(), payload, retryable)
}
