// Package yard implements the slot allocation rule for the physical yard.
// It is pure: occupancy is passed in, never queried here.
package yard

// Slot is a coordinate inside one bay.
type Slot struct {
	DepthRow int
	Tier     int
}

// FirstFreeSlot returns the slot a new container should take under the yard
// rule: fill from the inside out, stack bottom to top. Depth rows are walked
// from the deepest (maxDepthRows) toward the front, and within each row tiers
// are walked from 1 upward. The iteration order is a business rule: it
// mirrors how the crane operators actually work the bay, so it must not be
// changed.
//
// The second return value is false when every slot is occupied.
func FirstFreeSlot(maxDepthRows, maxTiers int, occupied map[Slot]bool) (Slot, bool) {
	for depthRow := maxDepthRows; depthRow >= 1; depthRow-- {
		for tier := 1; tier <= maxTiers; tier++ {
			s := Slot{DepthRow: depthRow, Tier: tier}
			if !occupied[s] {
				return s, true
			}
		}
	}
	return Slot{}, false
}

// FirstFreeTier returns the lowest free tier within a single depth row, or
// false when the row is stacked to maxTiers.
func FirstFreeTier(maxTiers int, occupiedTiers map[int]bool) (int, bool) {
	for tier := 1; tier <= maxTiers; tier++ {
		if !occupiedTiers[tier] {
			return tier, true
		}
	}
	return 0, false
}
