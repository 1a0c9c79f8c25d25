package reaper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confspace/conference-service/internal/domain"
	"github.com/confspace/conference-service/internal/registry"
	"github.com/confspace/conference-service/internal/store"
)

func waitStored(t *testing.T, st store.RoomStore, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := st.GetRoom(context.Background(), id); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never stored", id)
}

func seedRoom(t *testing.T, st store.RoomStore, id string, lastActivity time.Time) {
	t.Helper()
	room := &domain.Room{
		ID:           id,
		Name:         id,
		Participants: []domain.Participant{{ID: id + "-p", Username: "alice"}},
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
		IsActive:     true,
	}
	if err := st.SaveRoom(context.Background(), room); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestSweepDeletesStaleKeepsFresh(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	seedRoom(t, st, "stale", time.Now().Add(-2*time.Hour))
	seedRoom(t, st, "fresh", time.Now())

	reg := registry.New(st, time.Second)
	if err := reg.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}

	r := New(reg, st, time.Hour, time.Hour)
	r.Sweep(context.Background())

	if _, err := reg.GetRoom("stale"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("stale room must be reaped, got %v", err)
	}
	if _, err := reg.GetRoom("fresh"); err != nil {
		t.Fatalf("fresh room must survive the sweep: %v", err)
	}
}

func TestSweepCoversStoreOnlyRooms(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)

	// a room that outlived a restart: present in the store, unknown to the
	// new registry
	seedRoom(t, st, "left-over", time.Now().Add(-2*time.Hour))

	reg := registry.New(st, time.Second)
	r := New(reg, st, time.Hour, time.Hour)
	r.Sweep(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := st.GetRoom(context.Background(), "left-over"); errors.Is(err, domain.ErrRoomNotFound) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("store-only stale room was not reaped")
}

func TestSweepIdempotent(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	reg := registry.New(st, time.Second)

	room := reg.CreateRoom("once", "alice")
	waitStored(t, st, room.ID)
	time.Sleep(20 * time.Millisecond)

	r := New(reg, st, time.Hour, 10*time.Millisecond)
	r.Sweep(context.Background())
	// second sweep sees nothing to do
	r.Sweep(context.Background())

	if _, err := reg.GetRoom(room.ID); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("room should stay deleted: %v", err)
	}
}
