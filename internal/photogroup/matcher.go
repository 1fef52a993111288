package photogroup

import (
	"sort"

	"github.com/mkarlsen/divelog/internal/entities"
)

// MatchGroups assigns photo groups to dives by chronological ordinal: the
// i-th group in time order gets the i-th dive in dive-number order. Camera
// and dive-computer clocks are assumed unsynchronized, so no timestamps are
// compared, only the relative order of sessions is trusted. Groups beyond
// the dive count stay unmatched.
func MatchGroups(groups []entities.PhotoGroup, dives []entities.ImportedDive) {
	sorted := make([]entities.ImportedDive, len(dives))
	copy(sorted, dives)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	for i := range groups {
		if i >= len(sorted) {
			break
		}
		id := sorted[i].ID
		number := sorted[i].Number
		groups[i].SuggestedDiveID = &id
		groups[i].SuggestedDiveNumber = &number
	}
}
