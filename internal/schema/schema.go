// Package schema validates canvas documents against a CUE schema before
// they are imported or synced. CUE handles the structural constraints
// (types, required fields, member-count minimums); the referential
// checks CUE cannot express (duplicate ids, dangling group members,
// membership cycles) run as a second pass over the decoded document.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/okono/slate/internal/scene"
)

//go:embed document.cue
var documentSchema string

// Error code constants, unified across validation passes.
const (
	ErrCodeParse      = "E001" // document is not valid JSON
	ErrCodeSchema     = "E002" // CUE constraint violation
	ErrCodeDuplicate  = "E003" // duplicate shape or group id
	ErrCodeUnknownRef = "E004" // group member references a missing id
	ErrCodeCycle      = "E005" // group membership cycle
)

// ValidationError is one schema or referential finding.
type ValidationError struct {
	Code    string
	Path    string // CUE path or record id, when known
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validator holds the compiled schema. Safe for reuse; not safe for
// concurrent use (cue.Context is not).
type Validator struct {
	ctx    *cue.Context
	docDef cue.Value
}

// NewValidator compiles the embedded document schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(documentSchema, cue.Filename("document.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	docDef := schema.LookupPath(cue.ParsePath("#Document"))
	if !docDef.Exists() {
		return nil, fmt.Errorf("document schema: #Document not found")
	}
	return &Validator{ctx: ctx, docDef: docDef}, nil
}

// ValidateBytes checks raw JSON against the schema and then against the
// referential rules. Returns all findings, not just the first.
func (v *Validator) ValidateBytes(data []byte) []*ValidationError {
	// JSON is a subset of CUE, so the document compiles directly.
	val := v.ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := val.Err(); err != nil {
		return cueFindings(ErrCodeParse, err)
	}

	unified := v.docDef.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return cueFindings(ErrCodeSchema, err)
	}

	doc, err := scene.DecodeDocument(data)
	if err != nil {
		// DecodeDocument re-checks ids; surface its finding under the
		// referential codes.
		return []*ValidationError{{Code: ErrCodeDuplicate, Message: err.Error()}}
	}
	return ValidateDocument(doc)
}

// ValidateDocument runs the referential checks on an already decoded
// document.
func ValidateDocument(doc scene.Document) []*ValidationError {
	var findings []*ValidationError

	shapeIDs := make(map[string]bool, len(doc.Shapes))
	for _, s := range doc.Shapes {
		if shapeIDs[s.ID] {
			findings = append(findings, &ValidationError{
				Code: ErrCodeDuplicate, Path: s.ID, Message: "duplicate shape id",
			})
		}
		shapeIDs[s.ID] = true
	}

	groupIDs := make(map[string]bool, len(doc.Groups))
	members := make(map[string][]string, len(doc.Groups))
	for _, g := range doc.Groups {
		if groupIDs[g.ID] || shapeIDs[g.ID] {
			findings = append(findings, &ValidationError{
				Code: ErrCodeDuplicate, Path: g.ID, Message: "duplicate group id",
			})
		}
		groupIDs[g.ID] = true
		members[g.ID] = g.MemberIDs
	}

	for _, g := range doc.Groups {
		for _, mid := range g.MemberIDs {
			if !shapeIDs[mid] && !groupIDs[mid] {
				findings = append(findings, &ValidationError{
					Code: ErrCodeUnknownRef, Path: g.ID,
					Message: fmt.Sprintf("member %q not in document", mid),
				})
			}
		}
		if hasCycle(g.ID, members) {
			findings = append(findings, &ValidationError{
				Code: ErrCodeCycle, Path: g.ID, Message: "group membership cycle",
			})
		}
	}
	return findings
}

// hasCycle walks the membership edges from start looking for a path back
// to start.
func hasCycle(start string, members map[string][]string) bool {
	visited := make(map[string]bool)
	stack := append([]string(nil), members[start]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == start {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, members[id]...)
	}
	return false
}

// cueFindings flattens a CUE error list into findings with paths.
func cueFindings(code string, err error) []*ValidationError {
	var findings []*ValidationError
	for _, e := range cueerrors.Errors(err) {
		path := joinPath(e.Path())
		findings = append(findings, &ValidationError{
			Code: code, Path: path, Message: e.Error(),
		})
	}
	if len(findings) == 0 {
		findings = append(findings, &ValidationError{Code: code, Message: err.Error()})
	}
	return findings
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
