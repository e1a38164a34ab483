// Package remote abstracts the shared tree-structured remote store.
//
// Path layout (mirrored by every implementation):
//
//	canvas/{canvasId}/objects/{shapeId} -> {t, x, y, w, h, txt?}
//	canvas/{canvasId}/groups/{groupId}  -> full group record
//	presence/{canvasId}/{userId}        -> {n, cl, c, sel}
//	users/{userId}/canvases/{canvasId}  -> canvas metadata
//
// The subscription model is "subscribe to a tree, get the full snapshot on
// every change": no incremental deltas. Consumers (the sync bridge) diff
// successive snapshots themselves.
//
// Concurrent writers are resolved last-write-wins per record. This is an
// explicit policy, not a merge; see the design notes.
package remote

import (
	"context"

	"github.com/okono/slate/internal/scene"
)

// Unsubscribe detaches a snapshot listener. Safe to call more than once.
type Unsubscribe func()

// Remote is the shared store every collaborating client writes to.
//
// Implementations must deliver a full object snapshot to every subscriber
// of a canvas after each object mutation, and must treat all writes as
// last-write-wins upserts.
type Remote interface {
	// Object tree.
	PutObject(ctx context.Context, canvasID, shapeID string, obj scene.WireObject) error
	PutObjects(ctx context.Context, canvasID string, objs map[string]scene.WireObject) error
	UpdateObjectPosition(ctx context.Context, canvasID, shapeID string, x, y int) error
	DeleteObject(ctx context.Context, canvasID, shapeID string) error
	DeleteObjects(ctx context.Context, canvasID string, shapeIDs []string) error
	Objects(ctx context.Context, canvasID string) (scene.Snapshot, error)
	Subscribe(canvasID string, fn func(scene.Snapshot)) (Unsubscribe, error)

	// Group tree. Group records ride alongside objects so late joiners
	// see membership; they do not participate in object snapshots.
	PutGroup(ctx context.Context, canvasID string, g scene.Group) error
	DeleteGroup(ctx context.Context, canvasID, groupID string) error
	Groups(ctx context.Context, canvasID string) ([]scene.Group, error)

	// Presence tree. Written only by its owner; erased on disconnect
	// (best-effort client-side, backed by a server-side hook).
	PutPresence(ctx context.Context, canvasID, userID string, p scene.Presence) error
	ClearPresence(ctx context.Context, canvasID, userID string) error
	Presences(ctx context.Context, canvasID string) (map[string]scene.Presence, error)

	// Canvas metadata.
	PutCanvasMeta(ctx context.Context, userID string, meta scene.CanvasMeta) error
	Canvases(ctx context.Context, userID string) ([]scene.CanvasMeta, error)
}
