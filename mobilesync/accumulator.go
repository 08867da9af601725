package mobilesync

import "bitbucket.org/mmagritech/farm_backend/models"

// Accumulator tallies one push across collections: the accepted-id response
// shape plus the counters the audit row wants.
type Accumulator struct {
	Result   PushResult
	Pushed   int
	Accepted int
	Errors   int
	byType   map[EntityType]map[string]int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		Result: PushResult{},
		byType: map[EntityType]map[string]int{},
	}
}

func (a *Accumulator) Add(t EntityType, outcomes []SyncOutcome) {
	ids := make([]AcceptedId, 0, len(outcomes))
	stats := map[string]int{}
	for _, o := range outcomes {
		a.Pushed++
		stats["pushed"]++
		if o.Accepted {
			a.Accepted++
			stats["accepted"]++
			ids = append(ids, AcceptedId{ClientId: o.ClientId})
			continue
		}
		a.Errors++
		stats["rejected"]++
	}
	a.Result[t] = ids
	a.byType[t] = stats
}

// Drop records an unauthorized collection: present in the response with an
// empty accepted list so the device keeps its records flagged unsynced.
func (a *Accumulator) Drop(t EntityType) {
	a.Result[t] = []AcceptedId{}
}

func (a *Accumulator) Status() string {
	switch {
	case a.Errors == 0:
		return models.SyncRunStatusSuccess
	case a.Accepted > 0:
		return models.SyncRunStatusPartial
	default:
		return models.SyncRunStatusFailed
	}
}

func (a *Accumulator) Stats() map[EntityType]map[string]int {
	return a.byType
}
