package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Room lifecycle
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_rooms_deleted_total",
			Help: "Total rooms deleted",
		},
		[]string{"reason"}, // "emptied" or "reaped"
	)

	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conference_active_rooms",
			Help: "Rooms currently held in the registry",
		},
	)

	ParticipantsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_participants_joined_total",
			Help: "Total participants that joined a room",
		},
	)

	ParticipantsLeft = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_participants_left_total",
			Help: "Total participants that left a room",
		},
	)

	// Realtime channel
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conference_ws_connections",
			Help: "Open realtime connections",
		},
	)

	SignalsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_signals_relayed_total",
			Help: "WebRTC signals delivered to their target",
		},
		[]string{"type"}, // "offer", "answer", "ice-candidate"
	)

	SignalsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_signals_dropped_total",
			Help: "WebRTC signals with no resolvable target",
		},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_chat_messages_total",
			Help: "Chat messages relayed",
		},
	)

	// Shared store
	StoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_store_errors_total",
			Help: "Failed shared-store operations (absorbed, not surfaced)",
		},
	)
)
