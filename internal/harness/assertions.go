package harness

import (
	"fmt"
	"math"
)

// positionTolerance absorbs float drift in scripted moves.
const positionTolerance = 1e-6

// Evaluate checks every assertion against the final state and returns
// all failures, not just the first.
func Evaluate(result *Result, assertions []Assertion) []error {
	var failures []error
	for i, a := range assertions {
		if err := evaluateOne(result, a); err != nil {
			failures = append(failures, fmt.Errorf("assertion %d (%s): %w", i, a.Type, err))
		}
	}
	return failures
}

func evaluateOne(result *Result, a Assertion) error {
	switch a.Type {
	case "shape_count":
		if got := result.Store.Len(); got != a.Count {
			return fmt.Errorf("want %d shapes, got %d", a.Count, got)
		}
	case "group_count":
		if got := len(result.Store.Groups()); got != a.Count {
			return fmt.Errorf("want %d groups, got %d", a.Count, got)
		}
	case "selection_count":
		if got := len(result.Store.Selection()); got != a.Count {
			return fmt.Errorf("want %d selected, got %d", a.Count, got)
		}
	case "shape_at":
		s, ok := result.Store.Shape(a.ID)
		if !ok {
			return fmt.Errorf("shape %q not in store", a.ID)
		}
		if math.Abs(s.X-a.X) > positionTolerance || math.Abs(s.Y-a.Y) > positionTolerance {
			return fmt.Errorf("shape %q at (%g, %g), want (%g, %g)", a.ID, s.X, s.Y, a.X, a.Y)
		}
	case "can_undo":
		if result.CanUndo != a.Want {
			return fmt.Errorf("can_undo = %v, want %v", result.CanUndo, a.Want)
		}
	case "can_redo":
		if result.CanRedo != a.Want {
			return fmt.Errorf("can_redo = %v, want %v", result.CanRedo, a.Want)
		}
	default:
		return fmt.Errorf("unknown assertion type")
	}
	return nil
}
