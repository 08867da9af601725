package mobilesync

import (
	"context"

	"bitbucket.org/mmagritech/farm_backend/models"
	"gorm.io/gorm"
)

// Actor is the already-authenticated identity a sync call runs as.
type Actor struct {
	ID   int
	Role string
}

// Scope is the set of farms an actor may write into and read from, with the
// owning farmer of each. Built once per sync call; rebuilt after the farms
// collection is processed so a farm created in the same push is in scope for
// the livestock and events that follow it.
type Scope struct {
	ActorId int
	Role    string
	FarmIds []int
	farmSet map[int]bool
	owners  map[int]int
}

func (s Scope) HasFarm(id int) bool {
	return s.farmSet[id]
}

// HomeFarm is the override target when a record claims a farm outside the
// actor's scope: the actor's oldest farm. Zero when the actor has none.
func (s Scope) HomeFarm() int {
	if len(s.FarmIds) == 0 {
		return 0
	}
	return s.FarmIds[0]
}

// OwnerOf returns the owning farmer of an in-scope farm, defaulting to the
// actor for farms the scope does not know (only possible for farm rows the
// actor itself creates).
func (s Scope) OwnerOf(farmId int) int {
	if owner, ok := s.owners[farmId]; ok && owner > 0 {
		return owner
	}
	return s.ActorId
}

// CanTouchOwner reports whether a stored row owned by farmerId may be
// modified from this scope. Guards against clientId collisions reaching
// across farmer boundaries.
func (s Scope) CanTouchOwner(farmerId int) bool {
	if farmerId == s.ActorId && s.Role == string(models.RoleFarmer) {
		return true
	}
	for _, owner := range s.owners {
		if owner == farmerId {
			return true
		}
	}
	return false
}

// BuildScope loads the actor's visible farms: owned farms for farmers,
// assigned farms for vets. Admins hold no write scope.
func BuildScope(ctx context.Context, db *gorm.DB, actor Actor) (Scope, error) {
	scope := Scope{
		ActorId: actor.ID,
		Role:    actor.Role,
		farmSet: map[int]bool{},
		owners:  map[int]int{},
	}

	var farmIds []int
	switch actor.Role {
	case string(models.RoleFarmer):
		err := db.WithContext(ctx).
			Model(&models.Farm{}).
			Where("farmer_id = ?", actor.ID).
			Order("id").
			Pluck("id", &farmIds).Error
		if err != nil {
			return scope, err
		}
	case string(models.RoleVet):
		err := db.WithContext(ctx).
			Model(&models.FarmAssignment{}).
			Where("user_id = ?", actor.ID).
			Order("farm_id").
			Pluck("farm_id", &farmIds).Error
		if err != nil {
			return scope, err
		}
	default:
		return scope, nil
	}

	if len(farmIds) == 0 {
		return scope, nil
	}

	var rows []struct {
		ID       int
		FarmerId int
	}
	err := db.WithContext(ctx).
		Model(&models.Farm{}).
		Select("id, farmer_id").
		Where("id IN ?", farmIds).
		Scan(&rows).Error
	if err != nil {
		return scope, err
	}

	scope.FarmIds = farmIds
	for _, row := range rows {
		scope.farmSet[row.ID] = true
		scope.owners[row.ID] = row.FarmerId
	}
	return scope, nil
}
