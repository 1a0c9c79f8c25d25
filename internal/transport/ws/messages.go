package ws

import (
	"encoding/json"

	"github.com/confspace/conference-service/internal/domain"
)

// Event types arriving from clients.
const (
	TypeJoinRoom           = "join-room"
	TypeWebRTCSignal       = "webrtc-signal" // relayed back out under the same type
	TypeMediaStateUpdate   = "media-state-update"
	TypeRequestMediaStates = "request-media-states"
	TypeChatMessage        = "chat-message" // echoed to the whole room, sender included
)

// Event types the server emits.
const (
	TypeUserJoined          = "user-joined"
	TypeUserLeft            = "user-left"
	TypeMediaStateChanged   = "media-state-changed"
	TypeMediaStatesResponse = "media-states-response"
)

// Message is the outbound envelope.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inbound defers payload decoding until the type is known.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinRoomPayload struct {
	RoomID            string             `json:"roomId"`
	ParticipantID     string             `json:"participantId"`
	InitialMediaState *domain.MediaState `json:"initialMediaState,omitempty"`
}

// SignalPayload carries one WebRTC negotiation message. Type and Data are
// opaque to the relay; only To is interpreted, for addressed delivery.
type SignalPayload struct {
	Type string          `json:"type"` // offer | answer | ice-candidate
	Data json.RawMessage `json:"data"`
	From string          `json:"from"`
	To   string          `json:"to"`
}

type MediaStateUpdatePayload struct {
	ParticipantID string `json:"participantId"`
	AudioOn       bool   `json:"audioOn"`
	VideoOn       bool   `json:"videoOn"`
}

type RequestMediaStatesPayload struct {
	RoomID string `json:"roomId"`
}

type ChatPayload struct {
	RoomID string `json:"roomId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`

	// Assigned by the server before fan-out.
	MessageID string `json:"messageId,omitempty"`
	TSUnix    int64  `json:"tsUnix,omitempty"`
}

type UserJoinedPayload struct {
	ParticipantID string `json:"participantId"`
	ConnectionID  string `json:"connectionId"`
}

type UserLeftPayload struct {
	ParticipantID string `json:"participantId"`
	Username      string `json:"username"`
}

type MediaStateChangedPayload struct {
	ParticipantID string `json:"participantId"`
	AudioOn       bool   `json:"audioOn"`
	VideoOn       bool   `json:"videoOn"`
	Username      string `json:"username"`
}

type MediaStatesResponsePayload struct {
	MediaStates []ParticipantMediaState `json:"mediaStates"`
}

type ParticipantMediaState struct {
	ParticipantID string `json:"participantId"`
	Username      string `json:"username"`
	AudioOn       bool   `json:"audioOn"`
	VideoOn       bool   `json:"videoOn"`
}
