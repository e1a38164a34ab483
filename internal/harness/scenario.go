package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted editing session.
// Scenarios run against an in-memory remote with sequential ids and a
// fixed clock, so the resulting remote snapshot is fully deterministic
// and comparable against a golden file.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Canvas overrides the logical canvas size (center-in-canvas).
	Canvas *CanvasSpec `yaml:"canvas,omitempty"`

	// Steps is the editing script, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final local state after the script.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// CanvasSpec is the logical canvas size for a scenario.
type CanvasSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Step is one scripted operation.
//
// Supported ops and their fields:
//
//	add         - shape (required)
//	select      - ids
//	move        - dx, dy (moves the selection)
//	align       - edge: left|right|top|bottom|center|middle
//	distribute  - axis: horizontal|vertical
//	center      - center selection in canvas
//	group       - name (groups the selection)
//	ungroup     - id (group id)
//	front, back, forward, backward - z-order on the selection
//	set_text    - id, text
//	set_fill    - id, fill
//	delete      - deletes the selection
//	copy, cut, paste
//	undo, redo
type Step struct {
	Op string `yaml:"op"`

	Shape *ShapeSpec `yaml:"shape,omitempty"`
	IDs   []string   `yaml:"ids,omitempty"`
	ID    string     `yaml:"id,omitempty"`
	Name  string     `yaml:"name,omitempty"`
	DX    float64    `yaml:"dx,omitempty"`
	DY    float64    `yaml:"dy,omitempty"`
	Edge  string     `yaml:"edge,omitempty"`
	Axis  string     `yaml:"axis,omitempty"`
	Text  string     `yaml:"text,omitempty"`
	Fill  string     `yaml:"fill,omitempty"`
}

// ShapeSpec declares a shape to add. The id is assigned by the harness's
// sequential generator unless given explicitly.
type ShapeSpec struct {
	ID     string  `yaml:"id,omitempty"`
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Text   string  `yaml:"text,omitempty"`
	Fill   string  `yaml:"fill,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion:
	// - "shape_count": store holds Count shapes
	// - "group_count": store holds Count groups
	// - "selection_count": selection holds Count ids
	// - "shape_at": shape ID sits at X, Y
	// - "can_undo", "can_redo": flag equals Want
	Type  string  `yaml:"type"`
	Count int     `yaml:"count,omitempty"`
	ID    string  `yaml:"id,omitempty"`
	X     float64 `yaml:"x,omitempty"`
	Y     float64 `yaml:"y,omitempty"`
	Want  bool    `yaml:"want,omitempty"`
}

// LoadScenario reads and parses a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &s, nil
}

// LoadScenarios reads every .yaml scenario under dir, sorted by path for
// stable ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
