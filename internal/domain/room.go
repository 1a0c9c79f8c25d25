package domain

import "time"

// Room is the authoritative document for one call session. The registry owns
// the in-memory copy; the shared store holds a JSON replica with its own TTL.
type Room struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
	IsActive     bool          `json:"isActive"`
}

// Participant returns a pointer into the participants slice, or nil.
func (r *Room) Participant(id string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand out past the registry lock.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Participants = make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		if p.MediaState != nil {
			ms := *p.MediaState
			p.MediaState = &ms
		}
		cp.Participants[i] = p
	}
	return &cp
}
