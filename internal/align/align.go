// Package align implements multi-shape alignment and distribution.
//
// Every function is pure: it takes a shape list and returns a sparse
// mapping of shape id to positional delta containing only the shapes that
// actually moved. Callers (the session's align command) turn the deltas
// into a reversible bulk-move.
package align

import (
	"sort"

	"github.com/okono/slate/internal/scene"
)

// moves smaller than this are dropped from the result; guards against
// float64 mean arithmetic producing phantom sub-nanometer deltas.
const epsilon = 1e-9

// Left moves every shape so its left edge equals the minimum left edge.
// Fewer than two shapes yields an empty mapping (nothing to align against).
func Left(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	minX := shapes[0].X
	for _, s := range shapes[1:] {
		if s.X < minX {
			minX = s.X
		}
	}
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, minX-s.X, 0)
	}
	return deltas
}

// Right moves every shape so its right edge equals the maximum right edge.
func Right(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	maxRight := shapes[0].X + shapes[0].Width
	for _, s := range shapes[1:] {
		if r := s.X + s.Width; r > maxRight {
			maxRight = r
		}
	}
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, maxRight-(s.X+s.Width), 0)
	}
	return deltas
}

// Top moves every shape so its top edge equals the minimum top edge.
func Top(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	minY := shapes[0].Y
	for _, s := range shapes[1:] {
		if s.Y < minY {
			minY = s.Y
		}
	}
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, 0, minY-s.Y)
	}
	return deltas
}

// Bottom moves every shape so its bottom edge equals the maximum bottom edge.
func Bottom(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	maxBottom := shapes[0].Y + shapes[0].Height
	for _, s := range shapes[1:] {
		if b := s.Y + s.Height; b > maxBottom {
			maxBottom = b
		}
	}
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, 0, maxBottom-(s.Y+s.Height))
	}
	return deltas
}

// Center repositions every shape so its horizontal center equals the
// arithmetic mean of all horizontal centers.
func Center(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	var sum float64
	for _, s := range shapes {
		sum += s.Bounds().CenterX()
	}
	mean := sum / float64(len(shapes))
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, mean-s.Bounds().CenterX(), 0)
	}
	return deltas
}

// Middle repositions every shape so its vertical center equals the
// arithmetic mean of all vertical centers.
func Middle(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 2 {
		return map[string]scene.Delta{}
	}
	var sum float64
	for _, s := range shapes {
		sum += s.Bounds().CenterY()
	}
	mean := sum / float64(len(shapes))
	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, 0, mean-s.Bounds().CenterY())
	}
	return deltas
}

// DistributeHorizontally spaces the shapes so the gaps between consecutive
// horizontal edges are equal. The two extreme shapes (leftmost, rightmost)
// are left untouched; only moved intermediates appear in the result.
// Fewer than three shapes yields an empty mapping.
func DistributeHorizontally(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 3 {
		return map[string]scene.Delta{}
	}
	sorted := make([]scene.Shape, len(shapes))
	copy(sorted, shapes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	first := sorted[0]
	last := sorted[len(sorted)-1]
	totalSpan := (last.X + last.Width) - first.X
	var sumWidths float64
	for _, s := range sorted {
		sumWidths += s.Width
	}
	gap := (totalSpan - sumWidths) / float64(len(sorted)-1)

	deltas := make(map[string]scene.Delta)
	cursor := first.X + first.Width
	for _, s := range sorted[1 : len(sorted)-1] {
		target := cursor + gap
		record(deltas, s.ID, target-s.X, 0)
		cursor = target + s.Width
	}
	return deltas
}

// DistributeVertically is the vertical counterpart of DistributeHorizontally.
func DistributeVertically(shapes []scene.Shape) map[string]scene.Delta {
	if len(shapes) < 3 {
		return map[string]scene.Delta{}
	}
	sorted := make([]scene.Shape, len(shapes))
	copy(sorted, shapes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	first := sorted[0]
	last := sorted[len(sorted)-1]
	totalSpan := (last.Y + last.Height) - first.Y
	var sumHeights float64
	for _, s := range sorted {
		sumHeights += s.Height
	}
	gap := (totalSpan - sumHeights) / float64(len(sorted)-1)

	deltas := make(map[string]scene.Delta)
	cursor := first.Y + first.Height
	for _, s := range sorted[1 : len(sorted)-1] {
		target := cursor + gap
		record(deltas, s.ID, 0, target-s.Y)
		cursor = target + s.Height
	}
	return deltas
}

// CenterInCanvas offsets every shape by the vector from the union bounding
// box center to the canvas center. Unlike the pairwise alignments this is
// meaningful for a single shape too.
func CenterInCanvas(shapes []scene.Shape, canvasWidth, canvasHeight float64) map[string]scene.Delta {
	if len(shapes) == 0 {
		return map[string]scene.Delta{}
	}
	box := shapes[0].Bounds()
	for _, s := range shapes[1:] {
		box = box.Union(s.Bounds())
	}
	dx := canvasWidth/2 - box.CenterX()
	dy := canvasHeight/2 - box.CenterY()

	deltas := make(map[string]scene.Delta)
	for _, s := range shapes {
		record(deltas, s.ID, dx, dy)
	}
	return deltas
}

// record stores a delta unless it is effectively zero.
func record(deltas map[string]scene.Delta, id string, dx, dy float64) {
	if dx > -epsilon && dx < epsilon {
		dx = 0
	}
	if dy > -epsilon && dy < epsilon {
		dy = 0
	}
	if dx == 0 && dy == 0 {
		return
	}
	deltas[id] = scene.Delta{DX: dx, DY: dy}
}
