package ws

import (
	"errors"
	"sync"
	"testing"
)

type fakeConn struct {
	id     string
	roomID string
	fail   bool

	mu   sync.Mutex
	msgs []Message
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) RoomID() string { return c.roomID }
func (c *fakeConn) Close() error   { return nil }

func (c *fakeConn) Send(msg Message) error {
	if c.fail {
		return errors.New("send failed")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	a := &fakeConn{id: "a", roomID: "r1"}
	b := &fakeConn{id: "b", roomID: "r1"}
	c := &fakeConn{id: "c", roomID: "r2"}
	for _, conn := range []*fakeConn{a, b, c} {
		h.Register(conn)
		h.Subscribe(conn)
	}

	h.Broadcast("r1", Message{Type: "t"})

	if len(a.received()) != 1 || len(b.received()) != 1 {
		t.Fatal("room members must receive the broadcast")
	}
	if len(c.received()) != 0 {
		t.Fatal("other rooms must not receive the broadcast")
	}
}

func TestHubBroadcastExcept(t *testing.T) {
	h := NewHub()
	a := &fakeConn{id: "a", roomID: "r1"}
	b := &fakeConn{id: "b", roomID: "r1"}
	h.Register(a)
	h.Subscribe(a)
	h.Register(b)
	h.Subscribe(b)

	h.BroadcastExcept("r1", "a", Message{Type: "t"})

	if len(a.received()) != 0 {
		t.Fatal("excluded connection must not receive the message")
	}
	if len(b.received()) != 1 {
		t.Fatal("the rest of the room must receive the message")
	}
}

func TestHubBroadcastBestEffort(t *testing.T) {
	h := NewHub()
	bad := &fakeConn{id: "bad", roomID: "r1", fail: true}
	good := &fakeConn{id: "good", roomID: "r1"}
	h.Register(bad)
	h.Subscribe(bad)
	h.Register(good)
	h.Subscribe(good)

	h.Broadcast("r1", Message{Type: "t"})

	if len(good.received()) != 1 {
		t.Fatal("a failing connection must not block the others")
	}
}

func TestHubSendTo(t *testing.T) {
	h := NewHub()
	a := &fakeConn{id: "a"}
	h.Register(a)

	if !h.SendTo("a", Message{Type: "t"}) {
		t.Fatal("send to a registered connection must succeed")
	}
	if h.SendTo("ghost", Message{Type: "t"}) {
		t.Fatal("send to an unknown connection must report failure")
	}
	if len(a.received()) != 1 {
		t.Fatal("message not delivered")
	}
}

func TestHubRemove(t *testing.T) {
	h := NewHub()
	a := &fakeConn{id: "a", roomID: "r1"}
	h.Register(a)
	h.Subscribe(a)

	h.Remove(a)

	h.Broadcast("r1", Message{Type: "t"})
	if len(a.received()) != 0 {
		t.Fatal("removed connection must not receive broadcasts")
	}
	if h.SendTo("a", Message{Type: "t"}) {
		t.Fatal("removed connection must not be addressable")
	}
}
