package remote

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okono/slate/internal/scene"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a durable Remote backed by a local SQLite database. It serves
// as the shared store when collaborators mount the same database file and
// as the persistence layer the CLI inspects.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// Snapshot notification is in-process: sessions within one process get
// the same synchronous full-snapshot delivery the in-memory remote gives.
type SQLite struct {
	db *sql.DB

	mu     sync.Mutex
	subs   map[string]map[int]func(scene.Snapshot)
	nextID int
}

// OpenSQLite creates or opens a remote store database at path.
// Applies pragmas and schema automatically; idempotent.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{
		db:   db,
		subs: make(map[string]map[int]func(scene.Snapshot)),
	}, nil
}

// Close closes the database connection.
func (r *SQLite) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// PutObject upserts one object record.
func (r *SQLite) PutObject(ctx context.Context, canvasID, shapeID string, obj scene.WireObject) error {
	if err := r.execPut(ctx, canvasID, shapeID, obj); err != nil {
		return err
	}
	return r.notify(ctx, canvasID)
}

// PutObjects upserts a batch in one transaction, notifying once.
func (r *SQLite) PutObjects(ctx context.Context, canvasID string, objs map[string]scene.WireObject) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put objects: %w", err)
	}
	for id, obj := range objs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO objects (canvas_id, shape_id, t, x, y, w, h, txt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(canvas_id, shape_id) DO UPDATE SET
				t = excluded.t, x = excluded.x, y = excluded.y,
				w = excluded.w, h = excluded.h, txt = excluded.txt
		`, canvasID, id, obj.T, obj.X, obj.Y, obj.W, obj.H, obj.Txt); err != nil {
			tx.Rollback()
			return fmt.Errorf("put objects: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put objects: %w", err)
	}
	return r.notify(ctx, canvasID)
}

// UpdateObjectPosition writes only the position fields of one record.
func (r *SQLite) UpdateObjectPosition(ctx context.Context, canvasID, shapeID string, x, y int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE objects SET x = ?, y = ? WHERE canvas_id = ? AND shape_id = ?
	`, x, y, canvasID, shapeID)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update position: no object %s/%s", canvasID, shapeID)
	}
	return r.notify(ctx, canvasID)
}

// DeleteObject removes one record. Absent records are a no-op.
func (r *SQLite) DeleteObject(ctx context.Context, canvasID, shapeID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM objects WHERE canvas_id = ? AND shape_id = ?`,
		canvasID, shapeID); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return r.notify(ctx, canvasID)
}

// DeleteObjects removes a batch in one transaction, notifying once.
func (r *SQLite) DeleteObjects(ctx context.Context, canvasID string, shapeIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	for _, id := range shapeIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM objects WHERE canvas_id = ? AND shape_id = ?`,
			canvasID, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete objects: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	return r.notify(ctx, canvasID)
}

// Objects returns the current snapshot of a canvas.
// Rows are read in shape_id order for deterministic iteration.
func (r *SQLite) Objects(ctx context.Context, canvasID string) (scene.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT shape_id, t, x, y, w, h, txt
		FROM objects WHERE canvas_id = ?
		ORDER BY shape_id ASC
	`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("read objects: %w", err)
	}
	defer rows.Close()

	snap := make(scene.Snapshot)
	for rows.Next() {
		var id string
		var obj scene.WireObject
		if err := rows.Scan(&id, &obj.T, &obj.X, &obj.Y, &obj.W, &obj.H, &obj.Txt); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		snap[id] = obj
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read objects: %w", err)
	}
	return snap, nil
}

// Subscribe registers a snapshot listener; the current snapshot is
// delivered immediately.
func (r *SQLite) Subscribe(canvasID string, fn func(scene.Snapshot)) (Unsubscribe, error) {
	initial, err := r.Objects(context.Background(), canvasID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.subs[canvasID] == nil {
		r.subs[canvasID] = make(map[int]func(scene.Snapshot))
	}
	token := r.nextID
	r.nextID++
	r.subs[canvasID][token] = fn
	r.mu.Unlock()

	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs[canvasID], token)
			r.mu.Unlock()
		})
	}, nil
}

// PutGroup upserts a group record (stored as JSON alongside the tree).
func (r *SQLite) PutGroup(ctx context.Context, canvasID string, g scene.Group) error {
	record, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("put group: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (canvas_id, group_id, record) VALUES (?, ?, ?)
		ON CONFLICT(canvas_id, group_id) DO UPDATE SET record = excluded.record
	`, canvasID, g.ID, string(record)); err != nil {
		return fmt.Errorf("put group: %w", err)
	}
	return nil
}

// DeleteGroup removes a group record.
func (r *SQLite) DeleteGroup(ctx context.Context, canvasID, groupID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM groups WHERE canvas_id = ? AND group_id = ?`,
		canvasID, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// Groups returns all group records of a canvas in group_id order.
func (r *SQLite) Groups(ctx context.Context, canvasID string) ([]scene.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record FROM groups WHERE canvas_id = ? ORDER BY group_id ASC
	`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("read groups: %w", err)
	}
	defer rows.Close()

	var out []scene.Group
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		var g scene.Group
		if err := json.Unmarshal([]byte(record), &g); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read groups: %w", err)
	}
	return out, nil
}

// PutPresence upserts a user's presence record.
func (r *SQLite) PutPresence(ctx context.Context, canvasID, userID string, p scene.Presence) error {
	record, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("put presence: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO presence (canvas_id, user_id, record) VALUES (?, ?, ?)
		ON CONFLICT(canvas_id, user_id) DO UPDATE SET record = excluded.record
	`, canvasID, userID, string(record)); err != nil {
		return fmt.Errorf("put presence: %w", err)
	}
	return nil
}

// ClearPresence erases a user's presence record.
func (r *SQLite) ClearPresence(ctx context.Context, canvasID, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM presence WHERE canvas_id = ? AND user_id = ?`,
		canvasID, userID); err != nil {
		return fmt.Errorf("clear presence: %w", err)
	}
	return nil
}

// Presences returns all live presence records of a canvas.
func (r *SQLite) Presences(ctx context.Context, canvasID string) (map[string]scene.Presence, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, record FROM presence WHERE canvas_id = ? ORDER BY user_id ASC
	`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("read presence: %w", err)
	}
	defer rows.Close()

	out := make(map[string]scene.Presence)
	for rows.Next() {
		var userID, record string
		if err := rows.Scan(&userID, &record); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		var p scene.Presence
		if err := json.Unmarshal([]byte(record), &p); err != nil {
			return nil, fmt.Errorf("decode presence: %w", err)
		}
		out[userID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read presence: %w", err)
	}
	return out, nil
}

// PutCanvasMeta upserts a canvas metadata record.
func (r *SQLite) PutCanvasMeta(ctx context.Context, userID string, meta scene.CanvasMeta) error {
	record, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("put canvas meta: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO canvases (user_id, canvas_id, record) VALUES (?, ?, ?)
		ON CONFLICT(user_id, canvas_id) DO UPDATE SET record = excluded.record
	`, userID, meta.ID, string(record)); err != nil {
		return fmt.Errorf("put canvas meta: %w", err)
	}
	return nil
}

// Canvases lists a user's canvases in canvas_id order.
func (r *SQLite) Canvases(ctx context.Context, userID string) ([]scene.CanvasMeta, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record FROM canvases WHERE user_id = ? ORDER BY canvas_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("read canvases: %w", err)
	}
	defer rows.Close()

	var out []scene.CanvasMeta
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan canvas meta: %w", err)
		}
		var meta scene.CanvasMeta
		if err := json.Unmarshal([]byte(record), &meta); err != nil {
			return nil, fmt.Errorf("decode canvas meta: %w", err)
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read canvases: %w", err)
	}
	return out, nil
}

func (r *SQLite) execPut(ctx context.Context, canvasID, shapeID string, obj scene.WireObject) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO objects (canvas_id, shape_id, t, x, y, w, h, txt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canvas_id, shape_id) DO UPDATE SET
			t = excluded.t, x = excluded.x, y = excluded.y,
			w = excluded.w, h = excluded.h, txt = excluded.txt
	`, canvasID, shapeID, obj.T, obj.X, obj.Y, obj.W, obj.H, obj.Txt); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// notify reads the post-write snapshot and delivers it to in-process
// subscribers in subscription order.
func (r *SQLite) notify(ctx context.Context, canvasID string) error {
	r.mu.Lock()
	n := len(r.subs[canvasID])
	r.mu.Unlock()
	if n == 0 {
		return nil
	}

	snap, err := r.Objects(ctx, canvasID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	tokens := make([]int, 0, n)
	for token := range r.subs[canvasID] {
		tokens = append(tokens, token)
	}
	sort.Ints(tokens)
	listeners := make([]func(scene.Snapshot), 0, len(tokens))
	for _, token := range tokens {
		listeners = append(listeners, r.subs[canvasID][token])
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap.Clone())
	}
	return nil
}

var _ Remote = (*SQLite)(nil)
