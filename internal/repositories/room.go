package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// RoomSnapshotRepository stores the last known state of rooms as JSON.
type RoomSnapshotRepository struct {
	db *sql.DB
}

func NewRoomSnapshotRepository(db *sql.DB) *RoomSnapshotRepository {
	return &RoomSnapshotRepository{db: db}
}

// Save stores rooms, replacing earlier snapshots of the same ids.
func (r *RoomSnapshotRepository) Save(rooms ...models.Room) error {
	query := `
		INSERT INTO room_snapshots (room_id, name, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	return inTx(r.db, func(tx *sql.Tx) error {
		for _, room := range rooms {
			if room.ID == "" {
				return fmt.Errorf("%w: room id is required", shared.ErrInvalidInput)
			}
			payload, err := json.Marshal(room)
			if err != nil {
				return fmt.Errorf("failed to encode room %s: %w", room.ID, err)
			}
			if _, err := tx.Exec(query, room.ID, room.Name, string(payload), now); err != nil {
				return fmt.Errorf("failed to save room %s: %w", room.ID, err)
			}
		}
		return nil
	})
}

// Get retrieves the snapshot of a room.
func (r *RoomSnapshotRepository) Get(id string) (models.Room, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM room_snapshots WHERE room_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, fmt.Errorf("%w: %s", shared.ErrRoomNotFound, id)
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to get room: %w", err)
	}
	return decodeRoom(payload)
}

// List returns every stored room, most recently saved first.
func (r *RoomSnapshotRepository) List() ([]models.Room, error) {
	rows, err := r.db.Query(`SELECT payload FROM room_snapshots ORDER BY updated_at DESC, room_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		room, err := decodeRoom(payload)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return rooms, nil
}

// Delete removes the snapshot of a room.
func (r *RoomSnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM room_snapshots WHERE room_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return affectedOne(result, shared.ErrRoomNotFound, id)
}

func decodeRoom(payload string) (models.Room, error) {
	var room models.Room
	if err := json.Unmarshal([]byte(payload), &room); err != nil {
		return models.Room{}, fmt.Errorf("failed to decode room: %w", err)
	}
	return room, nil
}
