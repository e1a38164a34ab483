// Package zorder implements paint-order (z-index) assignment.
//
// Shapes paint in ascending zIndex. Operations compute new zIndex values
// for a selection against the full shape list and return a sparse map of
// shape id to new value; the caller applies the map through a reversible
// command. All operations are total: zero or one selected shape is a
// no-op or a trivial single update, never a panic.
package zorder

import "sort"

// Entry pairs a shape id with its current zIndex. The slice passed to the
// operations must be in creation order; creation order is the tie-break
// when two shapes transiently share a zIndex.
type Entry struct {
	ID     string
	ZIndex float64
}

// BringToFront assigns each selected shape a zIndex strictly greater than
// the current maximum across all shapes. With multiple shapes selected,
// their relative order (by prior zIndex) is preserved among the new top
// values.
func BringToFront(all []Entry, selected []string) map[string]float64 {
	sel := pick(all, selected)
	if len(sel) == 0 {
		return map[string]float64{}
	}
	maxZ := all[0].ZIndex
	for _, e := range all[1:] {
		if e.ZIndex > maxZ {
			maxZ = e.ZIndex
		}
	}
	updates := make(map[string]float64, len(sel))
	for i, e := range sel {
		updates[e.ID] = maxZ + float64(i+1)
	}
	return updates
}

// SendToBack assigns each selected shape a zIndex strictly less than the
// current minimum, preserving relative order among the selection.
func SendToBack(all []Entry, selected []string) map[string]float64 {
	sel := pick(all, selected)
	if len(sel) == 0 {
		return map[string]float64{}
	}
	minZ := all[0].ZIndex
	for _, e := range all[1:] {
		if e.ZIndex < minZ {
			minZ = e.ZIndex
		}
	}
	updates := make(map[string]float64, len(sel))
	for i, e := range sel {
		updates[e.ID] = minZ - float64(len(sel)-i)
	}
	return updates
}

// BringForward swaps each selected shape's zIndex with its immediate upper
// neighbor in the globally sorted order. One step per call, not a re-sort.
// Shapes already at the top (or whose neighbor is also selected) stay put.
// The result includes the displaced neighbors' new values.
func BringForward(all []Entry, selected []string) map[string]float64 {
	order := sorted(all)
	isSel := selectedSet(selected)
	updates := make(map[string]float64)

	// Walk top-down so a block of adjacent selected shapes moves as a unit
	// instead of leapfrogging itself.
	for i := len(order) - 2; i >= 0; i-- {
		if !isSel[order[i].ID] || isSel[order[i+1].ID] {
			continue
		}
		order[i].ZIndex, order[i+1].ZIndex = order[i+1].ZIndex, order[i].ZIndex
		updates[order[i].ID] = order[i].ZIndex
		updates[order[i+1].ID] = order[i+1].ZIndex
		order[i], order[i+1] = order[i+1], order[i]
	}
	return updates
}

// SendBackward swaps each selected shape's zIndex with its immediate lower
// neighbor in the globally sorted order. Symmetric to BringForward.
func SendBackward(all []Entry, selected []string) map[string]float64 {
	order := sorted(all)
	isSel := selectedSet(selected)
	updates := make(map[string]float64)

	for i := 1; i < len(order); i++ {
		if !isSel[order[i].ID] || isSel[order[i-1].ID] {
			continue
		}
		order[i].ZIndex, order[i-1].ZIndex = order[i-1].ZIndex, order[i].ZIndex
		updates[order[i].ID] = order[i].ZIndex
		updates[order[i-1].ID] = order[i-1].ZIndex
		order[i], order[i-1] = order[i-1], order[i]
	}
	return updates
}

// pick returns the selected entries in ascending zIndex order (ties keep
// creation order).
func pick(all []Entry, selected []string) []Entry {
	isSel := selectedSet(selected)
	var sel []Entry
	for _, e := range all {
		if isSel[e.ID] {
			sel = append(sel, e)
		}
	}
	sort.SliceStable(sel, func(i, j int) bool { return sel[i].ZIndex < sel[j].ZIndex })
	return sel
}

// sorted returns all entries in ascending zIndex order (ties keep
// creation order).
func sorted(all []Entry) []Entry {
	order := make([]Entry, len(all))
	copy(order, all)
	sort.SliceStable(order, func(i, j int) bool { return order[i].ZIndex < order[j].ZIndex })
	return order
}

func selectedSet(selected []string) map[string]bool {
	m := make(map[string]bool, len(selected))
	for _, id := range selected {
		m[id] = true
	}
	return m
}
