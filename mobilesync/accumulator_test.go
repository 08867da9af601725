package mobilesync

import (
	"testing"

	"bitbucket.org/mmagritech/farm_backend/models"
)

func TestAccumulator_AcceptedIdsOnly(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(EntityFarms, []SyncOutcome{
		{ClientId: "farm-1", Accepted: true},
		{ClientId: "farm-2", Accepted: false, Reason: ReasonBadPayload},
		{ClientId: "farm-3", Accepted: true},
	})

	ids := acc.Result[EntityFarms]
	if len(ids) != 2 || ids[0].ClientId != "farm-1" || ids[1].ClientId != "farm-3" {
		t.Fatalf("accepted ids: %+v", ids)
	}
	if acc.Pushed != 3 || acc.Accepted != 2 || acc.Errors != 1 {
		t.Fatalf("counters: pushed=%d accepted=%d errors=%d", acc.Pushed, acc.Accepted, acc.Errors)
	}

	stats := acc.Stats()[EntityFarms]
	if stats["pushed"] != 3 || stats["accepted"] != 2 || stats["rejected"] != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestAccumulator_Status(t *testing.T) {
	cases := []struct {
		name     string
		outcomes []SyncOutcome
		want     string
	}{
		{"all accepted", []SyncOutcome{{ClientId: "a", Accepted: true}}, models.SyncRunStatusSuccess},
		{"empty push", nil, models.SyncRunStatusSuccess},
		{"mixed", []SyncOutcome{{ClientId: "a", Accepted: true}, {ClientId: "b"}}, models.SyncRunStatusPartial},
		{"all rejected", []SyncOutcome{{ClientId: "a"}, {ClientId: "b"}}, models.SyncRunStatusFailed},
	}
	for _, tc := range cases {
		acc := NewAccumulator()
		acc.Add(EntityLivestock, tc.outcomes)
		if got := acc.Status(); got != tc.want {
			t.Errorf("%s: status = %q, expected %q", tc.name, got, tc.want)
		}
	}
}

func TestAccumulator_DropKeepsCollectionInResponse(t *testing.T) {
	acc := NewAccumulator()
	acc.Drop(EntityVaccinations)

	ids, ok := acc.Result[EntityVaccinations]
	if !ok {
		t.Fatalf("dropped collection missing from response")
	}
	if len(ids) != 0 {
		t.Fatalf("dropped collection must accept nothing: %+v", ids)
	}
	if acc.Pushed != 0 || acc.Errors != 0 {
		t.Fatalf("drop must not touch counters")
	}
}
