package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/confspace/conference-service/internal/domain"
)

// MemoryStore is a RoomStore backed by a plain map, used by tests and by
// deployments that run without Redis. Documents go through a JSON round trip
// so the backend behaves like the real one (no aliasing of live rooms).
// Expiry is checked lazily on read.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	rooms map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		rooms: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) SaveRoom(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = memoryEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	s.mu.Lock()
	entry, ok := s.rooms[id]
	if ok && time.Now().After(entry.expiresAt) {
		delete(s.rooms, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	var room domain.Room
	if err := json.Unmarshal(entry.data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) ListRoomIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	ids := make([]string, 0, len(s.rooms))
	for id, entry := range s.rooms {
		if now.After(entry.expiresAt) {
			delete(s.rooms, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
