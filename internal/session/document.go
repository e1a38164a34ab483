package session

import (
	"context"
	"fmt"

	"github.com/okono/slate/internal/history"
	"github.com/okono/slate/internal/scene"
)

// ExportDocument snapshots the open canvas into a portable document.
func (s *Session) ExportDocument(name string) scene.Document {
	return scene.Document{
		Version: scene.DocumentVersion,
		Name:    name,
		Shapes:  s.store.Shapes(),
		Groups:  s.store.Groups(),
	}
}

// ImportDocument inserts a document's shapes into the open canvas as one
// reversible batch. Ids are re-minted so the same document can be
// imported twice; group records are remapped to the new ids and applied
// outside the history, like an inbound group change.
func (s *Session) ImportDocument(ctx context.Context, doc scene.Document) error {
	if doc.Version != scene.DocumentVersion {
		return fmt.Errorf("import: unsupported document version %d", doc.Version)
	}
	idMap := make(map[string]string, len(doc.Shapes))
	shapes := make([]scene.Shape, len(doc.Shapes))
	for i, sh := range doc.Shapes {
		cp := sh.Clone()
		cp.ID = s.ids.NewID()
		cp.ZIndex = s.store.NextZIndex() + float64(i)
		idMap[sh.ID] = cp.ID
		shapes[i] = cp
	}
	cmd := &history.BatchCreate{Store: s.store, Bridge: s.bridge, Label: "import", Shapes: shapes}
	if err := s.history.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	// Mint group ids first so nested group references remap too.
	for _, g := range doc.Groups {
		idMap[g.ID] = s.ids.NewID()
	}
	for _, g := range doc.Groups {
		cp := g.Clone()
		cp.ID = idMap[g.ID]
		members := make([]string, 0, len(g.MemberIDs))
		for _, mid := range g.MemberIDs {
			if mapped, ok := idMap[mid]; ok {
				members = append(members, mapped)
			}
		}
		if len(members) < 2 {
			continue
		}
		cp.MemberIDs = members
		s.store.PutGroup(cp)
		if b := s.groups.CalculateBounds(cp.ID); b != nil {
			cp.Bounds = *b
			s.store.PutGroup(cp)
		}
		s.bridge.GroupCreated(ctx, cp)
	}
	return nil
}
