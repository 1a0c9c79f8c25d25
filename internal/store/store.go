package store

import (
	"context"

	"github.com/confspace/conference-service/internal/domain"
)

// RoomStore is the shared room store: a document store with per-key expiry
// plus a set of active room ids. Both RedisStore and MemoryStore implement
// this interface. The registry treats the store as a write-behind replica;
// it becomes authoritative only when rehydrating after a restart.
type RoomStore interface {
	// SaveRoom upserts the serialized room, refreshes its TTL and adds the
	// id to the active-rooms index (refreshing the index TTL as well).
	SaveRoom(ctx context.Context, room *domain.Room) error
	// GetRoom returns domain.ErrRoomNotFound for absent or expired keys.
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	// DeleteRoom removes the document and the index entry. Deleting an
	// already-gone room is not an error.
	DeleteRoom(ctx context.Context, id string) error
	// ListRoomIDs returns the members of the active-rooms index.
	ListRoomIDs(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}
