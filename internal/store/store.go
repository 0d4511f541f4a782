package store

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Room directory backing the stats API. Only metadata lives here:
// canvas content stays in memory with its room and is gone when the
// process exits.
type Store struct {
	db *sql.DB
}

type RoomInfo struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	StrokeCount  int       `json:"stroke_count"`
}

type Stats struct {
	RoomCount   int `json:"room_count"`
	StrokeCount int `json:"stroke_count"`
}

func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Room directory initialized at %s", dbPath)
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		stroke_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_last_active ON rooms(last_active_at DESC);
	`

	_, err := db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upserts the room row and bumps its activity timestamp. Called on
// every join.
func (s *Store) RecordJoin(roomID string) error {
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO rooms (id) VALUES (?)",
		roomID,
	); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"UPDATE rooms SET last_active_at = CURRENT_TIMESTAMP WHERE id = ?",
		roomID,
	)
	return err
}

// Increments the room's lifetime stroke counter
func (s *Store) RecordStroke(roomID string) error {
	_, err := s.db.Exec(
		"UPDATE rooms SET stroke_count = stroke_count + 1, last_active_at = CURRENT_TIMESTAMP WHERE id = ?",
		roomID,
	)
	return err
}

func (s *Store) GetRoom(id string) (*RoomInfo, error) {
	row := s.db.QueryRow(
		"SELECT id, stroke_count, created_at, last_active_at FROM rooms WHERE id = ?",
		id,
	)

	var info RoomInfo
	err := row.Scan(&info.ID, &info.StrokeCount, &info.CreatedAt, &info.LastActiveAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Rooms ordered by most recent activity
func (s *Store) ListRooms(limit, offset int) ([]RoomInfo, error) {
	rows, err := s.db.Query(
		"SELECT id, stroke_count, created_at, last_active_at FROM rooms ORDER BY last_active_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []RoomInfo
	for rows.Next() {
		var info RoomInfo
		if err := rows.Scan(&info.ID, &info.StrokeCount, &info.CreatedAt, &info.LastActiveAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, info)
	}
	return rooms, rows.Err()
}

// Lifetime totals across all rooms ever seen
func (s *Store) GetStats() (Stats, error) {
	var stats Stats
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(stroke_count), 0) FROM rooms",
	).Scan(&stats.RoomCount, &stats.StrokeCount)
	return stats, err
}
