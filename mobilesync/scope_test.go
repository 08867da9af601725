package mobilesync

import (
	"testing"

	"bitbucket.org/mmagritech/farm_backend/models"
)

func testScope(actorId int, role string, farms map[int]int) Scope {
	s := Scope{
		ActorId: actorId,
		Role:    role,
		farmSet: map[int]bool{},
		owners:  map[int]int{},
	}
	for id, owner := range farms {
		s.FarmIds = append(s.FarmIds, id)
		s.farmSet[id] = true
		s.owners[id] = owner
	}
	// farm ids ascending so HomeFarm is deterministic
	for i := 0; i < len(s.FarmIds); i++ {
		for j := i + 1; j < len(s.FarmIds); j++ {
			if s.FarmIds[j] < s.FarmIds[i] {
				s.FarmIds[i], s.FarmIds[j] = s.FarmIds[j], s.FarmIds[i]
			}
		}
	}
	return s
}

func TestScope_HasFarmAndHomeFarm(t *testing.T) {
	s := testScope(7, string(models.RoleFarmer), map[int]int{3: 7, 9: 7})

	if !s.HasFarm(3) || !s.HasFarm(9) {
		t.Fatalf("scope should contain its farms")
	}
	if s.HasFarm(4) {
		t.Fatalf("scope should not contain farm 4")
	}
	if got := s.HomeFarm(); got != 3 {
		t.Fatalf("home farm should be the oldest, got %d", got)
	}

	empty := testScope(7, string(models.RoleFarmer), nil)
	if empty.HomeFarm() != 0 {
		t.Fatalf("empty scope has no home farm")
	}
}

func TestScope_OwnerOf(t *testing.T) {
	s := testScope(20, string(models.RoleVet), map[int]int{5: 11, 6: 12})

	if got := s.OwnerOf(5); got != 11 {
		t.Fatalf("OwnerOf(5) = %d, expected 11", got)
	}
	if got := s.OwnerOf(6); got != 12 {
		t.Fatalf("OwnerOf(6) = %d, expected 12", got)
	}
	// Unknown farm defaults to the actor.
	if got := s.OwnerOf(99); got != 20 {
		t.Fatalf("OwnerOf(99) = %d, expected actor 20", got)
	}
}

func TestScope_CanTouchOwner(t *testing.T) {
	farmer := testScope(7, string(models.RoleFarmer), map[int]int{3: 7})
	if !farmer.CanTouchOwner(7) {
		t.Fatalf("farmer should touch own rows")
	}
	if farmer.CanTouchOwner(8) {
		t.Fatalf("farmer must not touch rows owned by farmer 8")
	}

	vet := testScope(20, string(models.RoleVet), map[int]int{5: 11})
	if !vet.CanTouchOwner(11) {
		t.Fatalf("vet should touch rows of assigned farm owners")
	}
	if vet.CanTouchOwner(20) {
		t.Fatalf("vet has no rows of its own")
	}
	if vet.CanTouchOwner(12) {
		t.Fatalf("vet must not touch unassigned owners")
	}
}
