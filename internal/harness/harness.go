// Package harness runs scripted editing scenarios for conformance
// testing. Each scenario opens a real session against an in-memory
// remote, executes its steps through the same command layer the
// interactive client uses, and exposes the final local and remote state
// for assertions and golden snapshot comparison.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okono/slate/internal/remote"
	"github.com/okono/slate/internal/scene"
	"github.com/okono/slate/internal/session"
	"github.com/okono/slate/internal/store"
)

// Deterministic fixtures shared by every scenario run.
const (
	scenarioCanvasID = "scenario"
	scenarioUserID   = "tester"
)

// scenarioEpoch is the fixed wall clock start; each step advances it by
// 100ms so presence throttling and timestamps are reproducible.
var scenarioEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SequenceGenerator mints "s-001", "s-002", ... without a fixed pool, so
// scenarios of any length stay deterministic.
type SequenceGenerator struct {
	mu sync.Mutex
	n  int
}

// NewID returns the next sequential id.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("s-%03d", g.n)
}

// StepError reports which step of the script failed.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result carries the final state of a scenario run.
type Result struct {
	// RemoteObjects is the synced object tree at the end of the script.
	RemoteObjects scene.Snapshot

	// Store is the session's local store, for state assertions.
	Store *store.Store

	// CanUndo and CanRedo are the history flags after the script.
	CanUndo bool
	CanRedo bool

	// Diff counters from the sync bridge.
	Creates, Updates, Deletes, Suppressed int
}

// Run executes a scenario against a fresh in-memory remote and returns
// the final state. The script fails on the first erroring step.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	r := remote.NewMemory()

	clock := scenarioEpoch
	width, height := session.DefaultCanvasWidth, session.DefaultCanvasHeight
	if scenario.Canvas != nil {
		width, height = scenario.Canvas.Width, scenario.Canvas.Height
	}

	sess := session.New(r, scenarioCanvasID, scenarioUserID,
		session.WithIDGenerator(&SequenceGenerator{}),
		session.WithUser("Tester", "#8888ff"),
		session.WithCanvasSize(width, height),
		session.WithNow(func() time.Time { return clock }),
	)
	if err := sess.Open(ctx); err != nil {
		return nil, fmt.Errorf("open scenario session: %w", err)
	}
	defer sess.Close(ctx)

	for i, step := range scenario.Steps {
		clock = clock.Add(100 * time.Millisecond)
		if err := executeStep(ctx, sess, step); err != nil {
			return nil, &StepError{Index: i, Op: step.Op, Err: err}
		}
	}

	objs, err := r.Objects(ctx, scenarioCanvasID)
	if err != nil {
		return nil, fmt.Errorf("read final snapshot: %w", err)
	}
	creates, updates, deletes, suppressed := sess.Bridge().Counters()
	return &Result{
		RemoteObjects: objs,
		Store:         sess.Store(),
		CanUndo:       sess.CanUndo(),
		CanRedo:       sess.CanRedo(),
		Creates:       creates,
		Updates:       updates,
		Deletes:       deletes,
		Suppressed:    suppressed,
	}, nil
}

func executeStep(ctx context.Context, sess *session.Session, step Step) error {
	switch step.Op {
	case "add":
		if step.Shape == nil {
			return fmt.Errorf("add: missing shape")
		}
		_, err := sess.AddShape(ctx, shapeFromSpec(*step.Shape))
		return err
	case "select":
		sess.SetSelection(ctx, step.IDs)
		return nil
	case "move":
		return sess.MoveSelectionBy(ctx, step.DX, step.DY)
	case "align":
		return runAlign(ctx, sess, step.Edge)
	case "distribute":
		switch step.Axis {
		case "horizontal":
			return sess.DistributeHorizontally(ctx)
		case "vertical":
			return sess.DistributeVertically(ctx)
		default:
			return fmt.Errorf("distribute: unknown axis %q", step.Axis)
		}
	case "center":
		return sess.CenterInCanvas(ctx)
	case "group":
		_, err := sess.GroupSelection(ctx, step.Name)
		return err
	case "ungroup":
		return sess.Ungroup(ctx, step.ID)
	case "front":
		return sess.BringToFront(ctx)
	case "back":
		return sess.SendToBack(ctx)
	case "forward":
		return sess.BringForward(ctx)
	case "backward":
		return sess.SendBackward(ctx)
	case "set_text":
		return sess.SetText(ctx, step.ID, step.Text)
	case "set_fill":
		return sess.SetFill(ctx, step.ID, step.Fill)
	case "delete":
		return sess.DeleteSelection(ctx)
	case "copy":
		sess.Copy(ctx)
		return nil
	case "cut":
		_, err := sess.Cut(ctx)
		return err
	case "paste":
		_, err := sess.Paste(ctx)
		return err
	case "undo":
		sess.Undo(ctx)
		return nil
	case "redo":
		sess.Redo(ctx)
		return nil
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func runAlign(ctx context.Context, sess *session.Session, edge string) error {
	switch edge {
	case "left":
		return sess.AlignLeft(ctx)
	case "right":
		return sess.AlignRight(ctx)
	case "top":
		return sess.AlignTop(ctx)
	case "bottom":
		return sess.AlignBottom(ctx)
	case "center":
		return sess.AlignCenter(ctx)
	case "middle":
		return sess.AlignMiddle(ctx)
	default:
		return fmt.Errorf("align: unknown edge %q", edge)
	}
}

func shapeFromSpec(spec ShapeSpec) scene.Shape {
	return scene.Shape{
		ID:     spec.ID,
		Type:   scene.ShapeType(spec.Type),
		X:      spec.X,
		Y:      spec.Y,
		Width:  spec.Width,
		Height: spec.Height,
		Text:   spec.Text,
		Fill:   spec.Fill,
	}
}
