package mobilesync

import (
	"context"

	"bitbucket.org/mmagritech/farm_backend/models"
)

// RefLookup maps internal ids back to client identifiers when serializing
// pull snapshots. Built once per pull so views never query per row.
type RefLookup struct {
	farms     map[int]string
	sheds     map[int]string
	livestock map[int]string
}

func (l *RefLookup) Farm(id int) string {
	if l == nil {
		return ""
	}
	return l.farms[id]
}

// FarmOpt is Farm for nullable wire fields: nil when unmapped.
func (l *RefLookup) FarmOpt(id int) any {
	if cid := l.Farm(id); cid != "" {
		return cid
	}
	return nil
}

func (l *RefLookup) Livestock(id int) string {
	if l == nil {
		return ""
	}
	return l.livestock[id]
}

func (l *RefLookup) Shed(id *int) any {
	if l == nil || id == nil {
		return nil
	}
	if cid, ok := l.sheds[*id]; ok {
		return cid
	}
	return nil
}

func (l *RefLookup) Mother(id *int) any {
	if l == nil || id == nil {
		return nil
	}
	if cid, ok := l.livestock[*id]; ok {
		return cid
	}
	return nil
}

// BuildRefLookup prefetches the id -> clientId maps for everything a
// snapshot can reference: the scope's farms, sheds, and livestock, plus
// transfer destination farms, which may sit outside the scope.
func BuildRefLookup(ctx context.Context, env *Env) (*RefLookup, error) {
	look := &RefLookup{
		farms:     map[int]string{},
		sheds:     map[int]string{},
		livestock: map[int]string{},
	}
	farmIds := env.Scope.FarmIds
	if len(farmIds) == 0 {
		return look, nil
	}

	var err error
	look.farms, err = env.Resolver.ClientIdsByInternal(ctx, EntityFarms, farmIds)
	if err != nil {
		return nil, err
	}

	type idPair struct {
		ID       int
		ClientId string
	}
	var pairs []idPair
	err = env.DB.WithContext(ctx).
		Table("sheds").
		Select("id, client_id").
		Where("farm_id IN ?", farmIds).
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		look.sheds[p.ID] = p.ClientId
	}

	pairs = pairs[:0]
	err = env.DB.WithContext(ctx).
		Table("livestock").
		Select("id, client_id").
		Where("farm_id IN ?", farmIds).
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		look.livestock[p.ID] = p.ClientId
	}

	// Transfer destinations can belong to other farmers; their clientIds
	// still serialize so the device can render where an animal went.
	var destIds []int
	err = env.DB.WithContext(ctx).
		Table("transfers").
		Distinct("to_farm_id").
		Where("farm_id IN ?", farmIds).
		Pluck("to_farm_id", &destIds).Error
	if err != nil {
		return nil, err
	}
	missing := make([]int, 0, len(destIds))
	for _, id := range destIds {
		if _, ok := look.farms[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		extra, err := env.Resolver.ClientIdsByInternal(ctx, EntityFarms, missing)
		if err != nil {
			return nil, err
		}
		for id, cid := range extra {
			look.farms[id] = cid
		}
	}
	return look, nil
}

// snapshotBatch loads the authoritative rows for one entity type within the
// actor's scope. An empty scope short-circuits; no sync call ever scans a
// table unscoped.
func snapshotBatch[T any](ctx context.Context, env *Env, d Descriptor[T], look *RefLookup) ([]map[string]any, error) {
	views := []map[string]any{}
	if len(env.Scope.FarmIds) == 0 {
		return views, nil
	}

	q := env.DB.WithContext(ctx)
	if d.Type == EntityFarms {
		q = q.Where("id IN ?", env.Scope.FarmIds)
	} else {
		q = q.Where("farm_id IN ?", env.Scope.FarmIds)
	}
	if d.SoftDelete {
		q = q.Where("status <> ?", models.LivestockStatusRemoved)
	}

	var rows []T
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		views = append(views, d.View(row, look))
	}
	return views, nil
}
