package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/confspace/conference-service/internal/metrics"
	"github.com/confspace/conference-service/internal/registry"
)

// Server is the realtime gateway. Each connection moves through exactly one
// state transition chain: connected, joined to a room, disconnected.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	registry *registry.Registry

	pingEvery time.Duration
}

func NewServer(hub *Hub, reg *registry.Registry) *Server {
	return &Server{
		hub:      hub,
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	s.hub.Register(c)
	metrics.Connections.Inc()
	slog.Info("client connected", "conn", c.id)

	go s.writeLoop(c)
	s.readLoop(c)

	s.hub.Remove(c)
	metrics.Connections.Dec()
	s.handleDisconnect(c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
	slog.Info("client disconnected", "conn", c.id)
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoinRoom:
			s.handleJoin(c, msg.Payload)
		case TypeWebRTCSignal:
			s.handleSignal(c, msg.Payload)
		case TypeMediaStateUpdate:
			s.handleMediaUpdate(c, msg.Payload)
		case TypeRequestMediaStates:
			s.handleMediaStatesRequest(c, msg.Payload)
		case TypeChatMessage:
			s.handleChat(c, msg.Payload)
		default:
			// no error event type on the realtime channel; unknown frames are dropped
		}
	}
}

func (s *Server) handleJoin(c *wsConn, payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" || p.ParticipantID == "" {
		return
	}
	if c.roomID != "" {
		// already joined; a connection binds to one room for its lifetime
		return
	}

	c.roomID = p.RoomID
	c.participantID = p.ParticipantID
	s.hub.Subscribe(c)

	username, bound := s.registry.BindConnection(p.RoomID, p.ParticipantID, c.id, p.InitialMediaState)
	slog.Info("connection joined room", "conn", c.id, "room", p.RoomID, "participant", p.ParticipantID)

	s.hub.BroadcastExcept(p.RoomID, c.id, Message{
		Type: TypeUserJoined,
		Payload: UserJoinedPayload{
			ParticipantID: p.ParticipantID,
			ConnectionID:  c.id,
		},
	})

	// others learn the newcomer's starting media state right away
	if bound && p.InitialMediaState != nil {
		s.hub.BroadcastExcept(p.RoomID, c.id, Message{
			Type: TypeMediaStateChanged,
			Payload: MediaStateChangedPayload{
				ParticipantID: p.ParticipantID,
				AudioOn:       p.InitialMediaState.AudioOn,
				VideoOn:       p.InitialMediaState.VideoOn,
				Username:      username,
			},
		})
	}
}

func (s *Server) handleSignal(c *wsConn, payload json.RawMessage) {
	var sig SignalPayload
	if err := json.Unmarshal(payload, &sig); err != nil || sig.To == "" {
		return
	}

	connID := s.registry.FindParticipantConnection(sig.To)
	if connID == "" {
		// target unknown or not yet bound; the sender's negotiation will time out
		metrics.SignalsDropped.Inc()
		slog.Debug("signal target not connected", "to", sig.To, "type", sig.Type)
		return
	}

	if s.hub.SendTo(connID, Message{Type: TypeWebRTCSignal, Payload: sig}) {
		metrics.SignalsRelayed.WithLabelValues(signalLabel(sig.Type)).Inc()
	} else {
		metrics.SignalsDropped.Inc()
	}
}

// signalLabel keeps the metric label set bounded.
func signalLabel(t string) string {
	switch t {
	case "offer", "answer", "ice-candidate":
		return t
	default:
		return "other"
	}
}

func (s *Server) handleMediaUpdate(c *wsConn, payload json.RawMessage) {
	var p MediaStateUpdatePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.ParticipantID == "" {
		return
	}

	roomID, username, ok := s.registry.UpdateMediaState(p.ParticipantID, p.AudioOn, p.VideoOn)
	if !ok {
		// unknown participant: dropped, not retried
		return
	}

	s.hub.BroadcastExcept(roomID, c.id, Message{
		Type: TypeMediaStateChanged,
		Payload: MediaStateChangedPayload{
			ParticipantID: p.ParticipantID,
			AudioOn:       p.AudioOn,
			VideoOn:       p.VideoOn,
			Username:      username,
		},
	})
}

func (s *Server) handleMediaStatesRequest(c *wsConn, payload json.RawMessage) {
	var p RequestMediaStatesPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}

	room, err := s.registry.GetRoom(p.RoomID)
	if err != nil {
		return
	}

	states := make([]ParticipantMediaState, 0, len(room.Participants))
	for _, part := range room.Participants {
		if part.MediaState == nil {
			continue
		}
		states = append(states, ParticipantMediaState{
			ParticipantID: part.ID,
			Username:      part.Username,
			AudioOn:       part.MediaState.AudioOn,
			VideoOn:       part.MediaState.VideoOn,
		})
	}

	// reply to the requester only
	_ = c.Send(Message{
		Type:    TypeMediaStatesResponse,
		Payload: MediaStatesResponsePayload{MediaStates: states},
	})
}

func (s *Server) handleChat(c *wsConn, payload json.RawMessage) {
	var p ChatPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}
	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		return
	}

	p.MessageID = ulid.Make().String()
	p.TSUnix = time.Now().Unix()

	// whole room, sender included; connections that join later never see it
	s.hub.Broadcast(p.RoomID, Message{Type: TypeChatMessage, Payload: p})
	metrics.ChatMessages.Inc()
}

// handleDisconnect removes the participant bound to a closed connection and
// tells the survivors. A participant that already left via the REST API is
// not found here, which is fine.
func (s *Server) handleDisconnect(c *wsConn) {
	roomID, p, ok := s.registry.FindByConnection(c.id)
	if !ok {
		return
	}

	_, room, err := s.registry.RemoveParticipant(roomID, p.ID)
	if err != nil {
		slog.Debug("disconnect remove failed", "room", roomID, "participant", p.ID, "err", err)
		return
	}
	if room != nil {
		s.hub.Broadcast(roomID, Message{
			Type: TypeUserLeft,
			Payload: UserLeftPayload{
				ParticipantID: p.ID,
				Username:      p.Username,
			},
		})
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// --- connection ---

type wsConn struct {
	id            string
	conn          *websocket.Conn
	roomID        string
	participantID string
	sendMu        chan struct{}
	closed        chan struct{}
}

func newWsConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		id:     uuid.NewString(),
		conn:   conn,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) RoomID() string { return c.roomID }
