package mobilesync

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrUnresolvedReference marks a parent identifier that matched no stored row.
var ErrUnresolvedReference = errors.New("unresolved reference")

// RefSpec declares one parent reference an entity type carries besides its
// owning farm/livestock: the wire field holding the parent's clientId, the
// parent's type, and the model column the resolved id lands in.
type RefSpec struct {
	Field    string
	Target   EntityType
	Column   string
	Required bool
}

// LookupSpec declares a server-assigned lookup reference (vaccine, disease):
// the wire field holding the id and the lookup table it must exist in. A miss
// is tolerated and stored as NULL.
type LookupSpec struct {
	Field string
	Table string
}

// ResolvedRefs maps a wire field to the resolved internal id (0 for an
// optional reference that did not resolve).
type ResolvedRefs map[string]int

var tableByEntity = map[EntityType]string{
	EntityFarms:           "farms",
	EntitySheds:           "sheds",
	EntityLivestock:       "livestock",
	EntityBirths:          "births",
	EntityDeaths:          "deaths",
	EntityTransfers:       "transfers",
	EntitySales:           "sales",
	EntityVaccinations:    "vaccinations",
	EntityDewormings:      "dewormings",
	EntityTreatments:      "treatments",
	EntityPregnancyChecks: "pregnancy_checks",
	EntityMilkings:        "milkings",
	EntityWeights:         "weights",
	EntityInseminations:   "inseminations",
	EntityDryOffs:         "dry_offs",
	EntityHeats:           "heats",
	EntityExpenses:        "expenses",
}

// Resolver looks up stored rows by their client-generated identifier. All
// lookups hit the database directly so a parent inserted earlier in the same
// push resolves for the records that follow it.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the internal id for (entityType, clientId).
func (r *Resolver) Resolve(ctx context.Context, target EntityType, clientId string) (int, error) {
	if clientId == "" {
		return 0, ErrUnresolvedReference
	}
	table, ok := tableByEntity[target]
	if !ok {
		return 0, ErrUnresolvedReference
	}
	var id int
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id").
		Where("client_id = ?", clientId).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, ErrUnresolvedReference
	}
	return id, nil
}

// ResolveOwned additionally returns the owning farm, for livestock-rooted
// events that inherit their farm from the referenced animal.
func (r *Resolver) ResolveOwned(ctx context.Context, target EntityType, clientId string) (id int, farmId int, err error) {
	if clientId == "" {
		return 0, 0, ErrUnresolvedReference
	}
	table, ok := tableByEntity[target]
	if !ok {
		return 0, 0, ErrUnresolvedReference
	}
	var row struct {
		ID     int
		FarmId int
	}
	err = r.db.WithContext(ctx).
		Table(table).
		Select("id, farm_id").
		Where("client_id = ?", clientId).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.ID == 0 {
		return 0, 0, ErrUnresolvedReference
	}
	return row.ID, row.FarmId, nil
}

// LookupRef verifies a server-assigned lookup id (vaccine, disease) exists.
// Returns nil rather than an error when it does not: lookup references are
// tolerated missing and stored as NULL.
func (r *Resolver) LookupRef(ctx context.Context, table string, id int) *int {
	if id <= 0 {
		return nil
	}
	var found int
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id").
		Where("id = ?", id).
		Limit(1).
		Scan(&found).Error
	if err != nil || found == 0 {
		return nil
	}
	return &found
}

// ClientIdsByInternal builds the internal-id -> clientId mapping used when
// serializing pull snapshots.
func (r *Resolver) ClientIdsByInternal(ctx context.Context, target EntityType, ids []int) (map[int]string, error) {
	out := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	table, ok := tableByEntity[target]
	if !ok {
		return out, nil
	}
	var rows []struct {
		ID       int
		ClientId string
	}
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id, client_id").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.ClientId
	}
	return out, nil
}
