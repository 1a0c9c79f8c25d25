package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confspace/conference-service/internal/domain"
)

func testRoom(id string) *domain.Room {
	now := time.Now()
	return &domain.Room{
		ID:   id,
		Name: "test",
		Participants: []domain.Participant{
			{ID: "p1", Username: "alice", JoinedAt: now},
		},
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	ctx := context.Background()

	room := testRoom("r1")
	if err := st.SaveRoom(ctx, room); err != nil {
		t.Fatalf("SaveRoom: %v", err)
	}

	got, err := st.GetRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if got.Name != "test" || len(got.Participants) != 1 {
		t.Fatalf("round trip diverged: %+v", got)
	}

	// stored copy must not alias the caller's document
	room.Participants[0].Username = "mutated"
	again, _ := st.GetRoom(ctx, "r1")
	if again.Participants[0].Username != "alice" {
		t.Fatal("store aliases the saved room")
	}

	ids, err := st.ListRoomIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "r1" {
		t.Fatalf("ListRoomIDs: %v %v", ids, err)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	st := NewMemoryStore(time.Hour)

	if _, err := st.GetRoom(context.Background(), "nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_ = st.SaveRoom(ctx, testRoom("r1"))
	if err := st.DeleteRoom(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := st.GetRoom(ctx, "r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound after delete, got %v", err)
	}

	// deleting again is not an error
	if err := st.DeleteRoom(ctx, "r1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	st := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	_ = st.SaveRoom(ctx, testRoom("r1"))
	time.Sleep(40 * time.Millisecond)

	if _, err := st.GetRoom(ctx, "r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	ids, _ := st.ListRoomIDs(ctx)
	if len(ids) != 0 {
		t.Fatalf("expired room still indexed: %v", ids)
	}
}

func TestMemoryStoreSaveRefreshesTTL(t *testing.T) {
	st := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	_ = st.SaveRoom(ctx, testRoom("r1"))
	time.Sleep(30 * time.Millisecond)
	_ = st.SaveRoom(ctx, testRoom("r1"))
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first save but only 30ms after the refresh
	if _, err := st.GetRoom(ctx, "r1"); err != nil {
		t.Fatalf("refreshed room expired early: %v", err)
	}
}
