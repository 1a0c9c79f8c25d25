package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/confspace/conference-service/internal/domain"
	"github.com/confspace/conference-service/internal/metrics"
	"github.com/confspace/conference-service/internal/store"
)

// Registry owns every active room. All mutations are serialized through one
// mutex; the shared store is updated behind each mutation on a best-effort
// basis and never rolls back the in-memory change. Store writes for one room
// drain through a per-room queue, so a delete can never be overwritten by an
// older save.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room

	store     store.RoomStore
	opTimeout time.Duration

	queueMu sync.Mutex
	queues  map[string]*storeQueue
}

// storeQueue holds the pending store operations for one room, applied in
// enqueue order by a single drain goroutine.
type storeQueue struct {
	ops  []func(context.Context)
	busy bool
}

func New(st store.RoomStore, opTimeout time.Duration) *Registry {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &Registry{
		rooms:     make(map[string]*domain.Room),
		store:     st,
		opTimeout: opTimeout,
		queues:    make(map[string]*storeQueue),
	}
}

// CreateRoom builds a single-participant room and returns a copy of it.
func (r *Registry) CreateRoom(name, username string) *domain.Room {
	now := time.Now()
	room := &domain.Room{
		ID:   uuid.NewString(),
		Name: name,
		Participants: []domain.Participant{{
			ID:       uuid.NewString(),
			Username: username,
			JoinedAt: now,
		}},
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}

	r.mu.Lock()
	r.rooms[room.ID] = room
	metrics.ActiveRooms.Set(float64(len(r.rooms)))
	out := room.Clone()
	r.persist(out)
	r.mu.Unlock()

	metrics.RoomsCreated.Inc()
	metrics.ParticipantsJoined.Inc()

	slog.Info("room created", "room", room.ID, "name", name)
	return out
}

// AddParticipant appends a new participant and refreshes lastActivity.
// Returns the participant and a copy of the updated room.
func (r *Registry) AddParticipant(roomID, username string) (*domain.Participant, *domain.Room, error) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return nil, nil, domain.ErrRoomNotFound
	}
	if !room.IsActive {
		r.mu.Unlock()
		return nil, nil, domain.ErrRoomInactive
	}

	p := domain.Participant{
		ID:       uuid.NewString(),
		Username: username,
		JoinedAt: time.Now(),
	}
	room.Participants = append(room.Participants, p)
	room.LastActivity = time.Now()
	out := room.Clone()
	r.persist(out)
	r.mu.Unlock()

	metrics.ParticipantsJoined.Inc()

	slog.Info("participant joined", "room", roomID, "user", username)
	return &p, out, nil
}

// RemoveParticipant removes the participant and deletes the room when it
// empties; no caller ever observes a zero-participant room. The second
// return value is nil when the room was deleted.
func (r *Registry) RemoveParticipant(roomID, participantID string) (*domain.Participant, *domain.Room, error) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return nil, nil, domain.ErrRoomNotFound
	}

	idx := -1
	for i := range room.Participants {
		if room.Participants[i].ID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.mu.Unlock()
		return nil, nil, domain.ErrParticipantNotFound
	}

	removed := room.Participants[idx]
	room.Participants = append(room.Participants[:idx], room.Participants[idx+1:]...)
	room.LastActivity = time.Now()

	if len(room.Participants) == 0 {
		delete(r.rooms, roomID)
		metrics.ActiveRooms.Set(float64(len(r.rooms)))
		r.dropFromStore(roomID)
		r.mu.Unlock()

		metrics.ParticipantsLeft.Inc()
		metrics.RoomsDeleted.WithLabelValues("emptied").Inc()

		slog.Info("room deleted, no participants remaining", "room", roomID)
		return &removed, nil, nil
	}

	out := room.Clone()
	r.persist(out)
	r.mu.Unlock()

	metrics.ParticipantsLeft.Inc()

	slog.Info("participant left", "room", roomID, "user", removed.Username)
	return &removed, out, nil
}

// BindConnection attaches the realtime connection to a participant and, when
// given, records the initial media state. Idempotent; a room or participant
// that disappeared between leave and bind is a logged no-op. Returns the
// participant's username on success.
func (r *Registry) BindConnection(roomID, participantID, connID string, initial *domain.MediaState) (string, bool) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		slog.Debug("bind for unknown room", "room", roomID, "conn", connID)
		return "", false
	}
	p := room.Participant(participantID)
	if p == nil {
		r.mu.Unlock()
		slog.Debug("bind for unknown participant", "room", roomID, "participant", participantID)
		return "", false
	}

	p.ConnectionID = connID
	if initial != nil {
		ms := *initial
		p.MediaState = &ms
	}
	username := p.Username
	out := room.Clone()
	r.persist(out)
	r.mu.Unlock()

	return username, true
}

// UpdateMediaState locates the participant across all rooms (the realtime
// event does not carry the room id) and records the new state. A missing
// participant drops the update.
func (r *Registry) UpdateMediaState(participantID string, audioOn, videoOn bool) (roomID, username string, ok bool) {
	r.mu.Lock()
	for id, room := range r.rooms {
		p := room.Participant(participantID)
		if p == nil {
			continue
		}
		p.MediaState = &domain.MediaState{AudioOn: audioOn, VideoOn: videoOn}
		room.LastActivity = time.Now()
		roomID, username, ok = id, p.Username, true
		r.persist(room.Clone())
		break
	}
	r.mu.Unlock()

	return roomID, username, ok
}

// FindByConnection resolves a connection id back to its room and participant,
// used on transport disconnect.
func (r *Registry) FindByConnection(connID string) (roomID string, p domain.Participant, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, room := range r.rooms {
		for i := range room.Participants {
			if room.Participants[i].ConnectionID == connID {
				return id, room.Participants[i], true
			}
		}
	}
	return "", domain.Participant{}, false
}

// FindParticipantConnection resolves the current connection of a participant
// for addressed signal delivery. Empty when unknown or not yet bound.
func (r *Registry) FindParticipantConnection(participantID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if p := room.Participant(participantID); p != nil {
			return p.ConnectionID
		}
	}
	return ""
}

func (r *Registry) GetRoom(roomID string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (r *Registry) ListRooms() []*domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Clone())
	}
	return out
}

// Rehydrate loads every room named in the store index into memory. Called
// once at process start, before any traffic; the store copy is authoritative
// here and only here.
func (r *Registry) Rehydrate(ctx context.Context) error {
	ids, err := r.store.ListRoomIDs(ctx)
	if err != nil {
		return err
	}

	loaded := 0
	for _, id := range ids {
		room, err := r.store.GetRoom(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrRoomNotFound) {
				slog.Warn("rehydrate room failed", "room", id, "err", err)
			}
			continue
		}
		r.mu.Lock()
		r.rooms[room.ID] = room
		metrics.ActiveRooms.Set(float64(len(r.rooms)))
		r.mu.Unlock()
		loaded++
	}

	if loaded > 0 {
		slog.Info("rehydrated rooms from store", "count", loaded)
	}
	return nil
}

// ReapStale deletes the room when its lastActivity is older than threshold.
// The in-memory copy wins when present; rooms that only survive in the store
// (after a restart without rehydration) are judged by the stored document.
// Reports whether the room was deleted; an already-gone room is a no-op.
func (r *Registry) ReapStale(ctx context.Context, roomID string, threshold time.Duration) bool {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	var last time.Time
	if ok {
		last = room.LastActivity
	}
	r.mu.Unlock()

	if !ok {
		stored, err := r.store.GetRoom(ctx, roomID)
		if err != nil {
			return false
		}
		last = stored.LastActivity
	}

	if time.Since(last) <= threshold {
		return false
	}

	r.mu.Lock()
	// re-check under the lock: a join since the first read refreshes
	// lastActivity and saves the room
	if room, resident := r.rooms[roomID]; resident {
		last = room.LastActivity
		if time.Since(last) <= threshold {
			r.mu.Unlock()
			return false
		}
	}
	delete(r.rooms, roomID)
	metrics.ActiveRooms.Set(float64(len(r.rooms)))
	r.dropFromStore(roomID)
	r.mu.Unlock()

	metrics.RoomsDeleted.WithLabelValues("reaped").Inc()

	slog.Info("reaped stale room", "room", roomID, "lastActivity", last)
	return true
}

// persist mirrors the room into the shared store without holding up the
// caller. Failures are logged and absorbed; memory is the fast path and the
// store exists for recovery across restarts. Callers enqueue while still
// holding r.mu, so the queue order matches the mutation order.
func (r *Registry) persist(room *domain.Room) {
	r.enqueueStoreOp(room.ID, func(ctx context.Context) {
		if err := r.store.SaveRoom(ctx, room); err != nil {
			metrics.StoreErrors.Inc()
			slog.Warn("store save failed", "room", room.ID, "err", err)
		}
	})
}

func (r *Registry) dropFromStore(roomID string) {
	r.enqueueStoreOp(roomID, func(ctx context.Context) {
		if err := r.store.DeleteRoom(ctx, roomID); err != nil {
			metrics.StoreErrors.Inc()
			slog.Warn("store delete failed", "room", roomID, "err", err)
		}
	})
}

// enqueueStoreOp appends op to the room's store queue and starts a drain
// goroutine when none is running.
func (r *Registry) enqueueStoreOp(roomID string, op func(context.Context)) {
	r.queueMu.Lock()
	q, ok := r.queues[roomID]
	if !ok {
		q = &storeQueue{}
		r.queues[roomID] = q
	}
	q.ops = append(q.ops, op)
	if !q.busy {
		q.busy = true
		go r.drainStoreOps(roomID, q)
	}
	r.queueMu.Unlock()
}

// drainStoreOps applies the room's queued store operations one at a time and
// retires the queue once it empties.
func (r *Registry) drainStoreOps(roomID string, q *storeQueue) {
	for {
		r.queueMu.Lock()
		if len(q.ops) == 0 {
			delete(r.queues, roomID)
			r.queueMu.Unlock()
			return
		}
		op := q.ops[0]
		q.ops = q.ops[1:]
		r.queueMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.opTimeout)
		op(ctx)
		cancel()
	}
}
