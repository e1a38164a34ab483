package scene

import "time"

// Presence is the per-user, per-canvas live record:
//
//	presence/{canvasId}/{userId} -> {n, cl, c, sel}
//
// Written only by its owner and removed on disconnect (best-effort,
// backed by a server-side disconnect hook).
type Presence struct {
	Name     string `json:"n"`
	Color    string `json:"cl"` // hex color for the remote cursor
	Cursor   [2]int `json:"c"`
	Selected []string `json:"sel"` // nil when nothing is selected
}

// CanvasMeta is the per-user canvas listing record:
//
//	users/{userId}/canvases/{canvasId}
type CanvasMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	OwnerID   string    `json:"ownerId"`
}
