package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/confspace/conference-service/internal/domain"
	"github.com/confspace/conference-service/internal/registry"
	"github.com/confspace/conference-service/internal/transport/ws"
)

type Handler struct {
	registry *registry.Registry
	hub      *ws.Hub
}

func NewHandler(reg *registry.Registry, hub *ws.Hub) *Handler {
	return &Handler{
		registry: reg,
		hub:      hub,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.Name == "" || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "room name and username are required"})
		return
	}

	room := h.registry.CreateRoom(req.Name, req.Username)

	writeJSON(w, http.StatusOK, CreateRoomResponse{
		RoomID:        room.ID,
		ParticipantID: room.Participants[0].ID,
		Room:          roomInfo(room),
	})
}

// POST /api/rooms/{roomId}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username is required"})
		return
	}

	p, room, err := h.registry.AddParticipant(roomID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrRoomInactive):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "room is no longer active"})
		default:
			slog.Error("handler.JoinRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		ParticipantID: p.ID,
		Room:          roomInfo(room),
	})
}

// POST /api/rooms/{roomId}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req LeaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	removed, room, err := h.registry.RemoveParticipant(roomID, req.ParticipantID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrParticipantNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "participant not found in room"})
		default:
			slog.Error("handler.LeaveRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	// the room survived; tell the remaining participants
	if room != nil {
		h.hub.Broadcast(roomID, ws.Message{
			Type: ws.TypeUserLeft,
			Payload: ws.UserLeftPayload{
				ParticipantID: removed.ID,
				Username:      removed.Username,
			},
		})
	}

	writeJSON(w, http.StatusOK, LeaveRoomResponse{Message: "successfully left the room"})
}

// GET /api/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.ListRooms()
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})

	resp := RoomsListResponse{Rooms: make([]RoomListItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Rooms = append(resp.Rooms, RoomListItem{
			ID:               rm.ID,
			Name:             rm.Name,
			ParticipantCount: len(rm.Participants),
			CreatedAt:        rm.CreatedAt,
			LastActivity:     rm.LastActivity,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/rooms/{roomId}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	room, err := h.registry.GetRoom(roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := RoomDetailResponse{
		ID:           room.ID,
		Name:         room.Name,
		Participants: make([]ParticipantDetail, 0, len(room.Participants)),
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
	}
	for _, p := range room.Participants {
		d := ParticipantDetail{
			ID:       p.ID,
			Username: p.Username,
			JoinedAt: p.JoinedAt,
		}
		if p.MediaState != nil {
			d.MediaState = *p.MediaState
		}
		resp.Participants = append(resp.Participants, d)
	}

	writeJSON(w, http.StatusOK, resp)
}
