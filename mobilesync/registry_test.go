package mobilesync

import (
	"testing"
	"time"

	"bitbucket.org/mmagritech/farm_backend/models"
)

func TestRegistry_DependencyOrder(t *testing.T) {
	cols := Registry()
	if len(cols) != 17 {
		t.Fatalf("expected 17 collections, got %d", len(cols))
	}

	order := map[EntityType]int{}
	for _, col := range cols {
		if _, dup := order[col.Type]; dup {
			t.Fatalf("duplicate collection %q", col.Type)
		}
		order[col.Type] = col.Order
	}

	if !(order[EntityFarms] < order[EntitySheds] &&
		order[EntitySheds] < order[EntityLivestock]) {
		t.Fatalf("aggregates out of order: farms=%d sheds=%d livestock=%d",
			order[EntityFarms], order[EntitySheds], order[EntityLivestock])
	}
	for _, event := range []EntityType{
		EntityBirths, EntityDeaths, EntityTransfers, EntitySales,
		EntityVaccinations, EntityDewormings, EntityTreatments, EntityPregnancyChecks,
		EntityMilkings, EntityWeights, EntityInseminations, EntityDryOffs,
		EntityHeats, EntityExpenses,
	} {
		if order[event] <= order[EntityLivestock] {
			t.Fatalf("event %q must order after livestock", event)
		}
	}
}

func TestRegistry_PushRoles(t *testing.T) {
	healthTypes := map[EntityType]bool{
		EntityVaccinations:    true,
		EntityDewormings:      true,
		EntityTreatments:      true,
		EntityPregnancyChecks: true,
	}
	for _, col := range Registry() {
		if !col.AllowsPush(string(models.RoleFarmer)) {
			t.Fatalf("farmers must push %q", col.Type)
		}
		if got := col.AllowsPush(string(models.RoleVet)); got != healthTypes[col.Type] {
			t.Fatalf("vet push for %q = %v, expected %v", col.Type, got, healthTypes[col.Type])
		}
		if col.AllowsPush(string(models.RoleAdmin)) {
			t.Fatalf("admins are pull-only, %q allows admin push", col.Type)
		}
	}
}

func TestFarmsDescriptor_DecodeAndView(t *testing.T) {
	d := farmsDescriptor()
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	rec := SyncRecord{
		ClientId:        "farm-1",
		Action:          ActionCreate,
		ClientCreatedAt: created,
		ClientUpdatedAt: updated,
		Fields: map[string]any{
			"name":      "Shwe Taung Farm",
			"address":   "Pyinmana",
			"phone":     "09250000000",
			"latitude":  19.75,
			"longitude": 96.2,
		},
	}
	base := models.SyncBase{ClientId: "farm-1", FarmerId: 7, CreatedAt: created, UpdatedAt: updated}

	row, err := d.Decode(rec, ResolvedRefs{"townshipId": 4}, base)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if row.Name != "Shwe Taung Farm" || row.FarmerId != 7 {
		t.Fatalf("decoded row: %+v", row)
	}
	if row.TownshipId == nil || *row.TownshipId != 4 {
		t.Fatalf("township ref not applied: %+v", row.TownshipId)
	}

	view := d.View(row, &RefLookup{})
	if view["clientId"] != "farm-1" {
		t.Fatalf("view clientId: %v", view["clientId"])
	}
	if view["clientUpdatedAt"] != updated.Format(time.RFC3339) {
		t.Fatalf("view clientUpdatedAt: %v", view["clientUpdatedAt"])
	}
	if view["name"] != "Shwe Taung Farm" {
		t.Fatalf("view name: %v", view["name"])
	}
}

func TestFarmsDescriptor_RejectsNamelessFarm(t *testing.T) {
	d := farmsDescriptor()
	rec := SyncRecord{ClientId: "farm-x", Fields: map[string]any{}}
	if _, err := d.Decode(rec, ResolvedRefs{}, models.SyncBase{}); err == nil {
		t.Fatalf("farm without name must fail decode")
	}
}

func TestLivestockDescriptor_OptionalRefs(t *testing.T) {
	d := livestockDescriptor()
	rec := SyncRecord{
		ClientId: "cow-1",
		Fields: map[string]any{
			"tagNumber": "T-100",
			"species":   "cattle",
			"status":    "sold",
		},
	}

	// Only the farm resolved; shed and mother stay NULL.
	row, err := d.Decode(rec, ResolvedRefs{"farmClientId": 3}, models.SyncBase{ClientId: "cow-1"})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if row.FarmId != 3 {
		t.Fatalf("farm id: %d", row.FarmId)
	}
	if row.ShedId != nil || row.MotherId != nil {
		t.Fatalf("unresolved optional refs must stay nil")
	}
	if row.Status != models.LivestockStatusSold {
		t.Fatalf("status: %q", row.Status)
	}

	// An unrecognized status falls back to active rather than failing.
	rec.Fields["status"] = "vanished"
	row, err = d.Decode(rec, ResolvedRefs{"farmClientId": 3}, models.SyncBase{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if row.Status != models.LivestockStatusActive {
		t.Fatalf("unknown status should default to active, got %q", row.Status)
	}
}

func TestMilkingsDescriptor_RejectsUnknownSession(t *testing.T) {
	d := milkingsDescriptor()
	rec := SyncRecord{
		ClientId: "milk-1",
		Fields: map[string]any{
			"session":        "midnight",
			"quantityLiters": "4.5",
		},
	}
	refs := ResolvedRefs{"livestockClientId": 10, "farmClientId": 3}
	if _, err := d.Decode(rec, refs, models.SyncBase{}); err == nil {
		t.Fatalf("unknown session must fail decode")
	}

	rec.Fields["session"] = "evening"
	row, err := d.Decode(rec, refs, models.SyncBase{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if row.Session != models.MilkSessionEvening {
		t.Fatalf("session: %q", row.Session)
	}
	if row.QuantityLiters.String() != "4.5" {
		t.Fatalf("quantity: %s", row.QuantityLiters)
	}
	if row.FarmId != 3 || row.LivestockId != 10 {
		t.Fatalf("ownership: farm=%d livestock=%d", row.FarmId, row.LivestockId)
	}
}

func TestEventView_ResolvesParentClientIds(t *testing.T) {
	d := weightsDescriptor()
	look := &RefLookup{
		farms:     map[int]string{3: "farm-1"},
		livestock: map[int]string{10: "cow-1"},
	}
	row := models.Weight{
		SyncBase:    models.SyncBase{ClientId: "w-1", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		FarmId:      3,
		LivestockId: 10,
		EventDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	view := d.View(row, look)
	if view["farmClientId"] != "farm-1" || view["livestockClientId"] != "cow-1" {
		t.Fatalf("parent refs not resolved: %v / %v", view["farmClientId"], view["livestockClientId"])
	}
	if view["eventDate"] != "2025-06-02T00:00:00Z" {
		t.Fatalf("eventDate: %v", view["eventDate"])
	}
}
