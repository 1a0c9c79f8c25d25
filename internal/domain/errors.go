package domain

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomInactive        = errors.New("room is no longer active")
	ErrParticipantNotFound = errors.New("participant not found in room")
)
