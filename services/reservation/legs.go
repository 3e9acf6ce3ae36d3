package reservation

import (
	"sort"

	"pmove/models"
)

// NextLegIndex returns the smallest unused leg index >= 2. Index 0 belongs
// to the primary leg and 1 is never used, matching the suffixed wire keys.
func NextLegIndex(legs []models.Leg) int {
	used := make(map[int]bool, len(legs))
	for _, l := range legs {
		used[l.Index] = true
	}
	idx := 2
	for used[idx] {
		idx++
	}
	return idx
}

func mergeLeg(t *models.Ticket, leg models.Leg) {
	leg.Index = NextLegIndex(t.Legs)
	t.Legs = append(t.Legs, leg)
	sort.SliceStable(t.Legs, func(i, j int) bool { return t.Legs[i].Index < t.Legs[j].Index })
}
