package mobilesync

import "time"

// CandidateWins is the whole conflict policy: last writer wins by client
// timestamp, strictly. Equal timestamps keep the stored row, so re-delivering
// a batch can never flap between two states. Pure function; both sides of the
// comparison are normalized to UTC before they get here.
func CandidateWins(storedUpdatedAt, candidateUpdatedAt time.Time) bool {
	return candidateUpdatedAt.After(storedUpdatedAt)
}
