package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/okono/slate/internal/scene"
)

// RunWithGolden executes a scenario, evaluates its assertions and
// compares the canonical encoding of the final remote snapshot against
// testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The canonical encoding sorts ids and fixes key order, so the golden
// bytes are stable across runs and platforms.
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	for _, failure := range Evaluate(result, scenario.Assertions) {
		t.Errorf("scenario %s: %v", scenario.Name, failure)
	}

	data, err := scene.MarshalSnapshot(result.RemoteObjects)
	if err != nil {
		t.Fatalf("scenario %s: marshal snapshot: %v", scenario.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, data)
}
