package domain

import "time"

type MediaState struct {
	AudioOn bool `json:"audioOn"`
	VideoOn bool `json:"videoOn"`
}

// Participant is one user's presence inside a room, distinct from the
// realtime connection that currently serves it. ConnectionID stays empty
// until the gateway binds one; a reconnect rebinds it (last bind wins).
type Participant struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	ConnectionID string      `json:"connectionId"`
	JoinedAt     time.Time   `json:"joinedAt"`
	MediaState   *MediaState `json:"mediaState,omitempty"`
}
