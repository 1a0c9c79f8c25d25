package http

import (
	"time"

	"github.com/confspace/conference-service/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type JoinRoomRequest struct {
	Username string `json:"username"`
}

type LeaveRoomRequest struct {
	ParticipantID string `json:"participantId"`
}

// RoomInfo is the compact room shape returned by create and join.
type RoomInfo struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Participants []ParticipantInfo `json:"participants"`
}

type ParticipantInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type CreateRoomResponse struct {
	RoomID        string   `json:"roomId"`
	ParticipantID string   `json:"participantId"`
	Room          RoomInfo `json:"room"`
}

type JoinRoomResponse struct {
	ParticipantID string   `json:"participantId"`
	Room          RoomInfo `json:"room"`
}

type LeaveRoomResponse struct {
	Message string `json:"message"`
}

type RoomListItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ParticipantCount int       `json:"participantCount"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActivity     time.Time `json:"lastActivity"`
}

type RoomsListResponse struct {
	Rooms []RoomListItem `json:"rooms"`
}

type RoomDetailResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Participants []ParticipantDetail `json:"participants"`
	CreatedAt    time.Time           `json:"createdAt"`
	LastActivity time.Time           `json:"lastActivity"`
}

type ParticipantDetail struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
	// Unreported media state serializes as both flags false.
	MediaState domain.MediaState `json:"mediaState"`
}

func roomInfo(room *domain.Room) RoomInfo {
	info := RoomInfo{
		ID:           room.ID,
		Name:         room.Name,
		Participants: make([]ParticipantInfo, 0, len(room.Participants)),
	}
	for _, p := range room.Participants {
		info.Participants = append(info.Participants, ParticipantInfo{
			ID:       p.ID,
			Username: p.Username,
		})
	}
	return info
}
