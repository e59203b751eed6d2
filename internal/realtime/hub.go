// Package realtime fans row changes out to the connected clients of the owning user.
//
// Every user has an independent feed with a monotonically increasing sequence
// number and a bounded replay buffer. A client reconnects with the last sequence
// it applied; if the buffer no longer covers the gap it receives a single resync
// event and must re-fetch its data.
package realtime

import (
	"log/slog"
	"sync"
)

// Event types.
const (
	TypeChange = "change"
	TypeResync = "resync"
)

// Row actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const (
	defaultReplaySize = 256
	sendBufferSize    = 32
)

// Event is one message of a user's change feed.
type Event struct {
	Seq    uint64 `json:"seq"`
	Type   string `json:"type"`
	Table  string `json:"table,omitempty"`
	Action string `json:"action,omitempty"`
	ID     string `json:"id,omitempty"`
	Row    any    `json:"row,omitempty"`
}

type feed struct {
	seq    uint64
	replay []Event
	subs   map[*Subscription]struct{}
}

// Subscription receives events on C. C is closed when the subscription is
// dropped for falling behind or after Close.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	hub     *Hub
	userUID string
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.detach(s)
}

// Hub keeps the per-user feeds.
type Hub struct {
	mu         sync.Mutex
	feeds      map[string]*feed
	replaySize int
	log        *slog.Logger
}

// NewHub creates a Hub that keeps the last replaySize events of each user.
// A non-positive replaySize selects the default.
func NewHub(log *slog.Logger, replaySize int) *Hub {
	if replaySize <= 0 {
		replaySize = defaultReplaySize
	}
	return &Hub{
		feeds:      make(map[string]*feed),
		replaySize: replaySize,
		log:        log,
	}
}

func (h *Hub) feed(userUID string) *feed {
	f, ok := h.feeds[userUID]
	if !ok {
		f = &feed{subs: make(map[*Subscription]struct{})}
		h.feeds[userUID] = f
	}
	return f
}

// Publish appends a change to the user's feed and delivers it to every
// subscriber without blocking. Subscribers whose buffer is full are dropped.
func (h *Hub) Publish(userUID, table, action, id string, row any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f := h.feed(userUID)
	f.seq++
	ev := Event{
		Seq:    f.seq,
		Type:   TypeChange,
		Table:  table,
		Action: action,
		ID:     id,
		Row:    row,
	}
	f.replay = append(f.replay, ev)
	if over := len(f.replay) - h.replaySize; over > 0 {
		f.replay = append(f.replay[:0:0], f.replay[over:]...)
	}

	for s := range f.subs {
		select {
		case s.ch <- ev:
		default:
			h.log.Warn("realtime subscriber too slow, dropping",
				slog.String("user_uid", userUID),
				slog.Uint64("seq", ev.Seq))
			h.detach(s)
		}
	}
}

// Subscribe attaches to the user's feed. Events with a sequence greater than
// since are replayed first; when they are no longer buffered, or since is ahead
// of the feed, the first event is a resync carrying the current sequence.
func (h *Hub) Subscribe(userUID string, since uint64) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	f := h.feed(userUID)
	backlog := h.backlog(f, since)

	ch := make(chan Event, sendBufferSize+len(backlog))
	for _, ev := range backlog {
		ch <- ev
	}
	s := &Subscription{C: ch, ch: ch, hub: h, userUID: userUID}
	f.subs[s] = struct{}{}
	return s
}

func (h *Hub) backlog(f *feed, since uint64) []Event {
	switch {
	case since == f.seq:
		return nil
	case since > f.seq:
		return []Event{{Seq: f.seq, Type: TypeResync}}
	case len(f.replay) == 0 || f.replay[0].Seq > since+1:
		return []Event{{Seq: f.seq, Type: TypeResync}}
	}
	first := int(since + 1 - f.replay[0].Seq)
	out := make([]Event, len(f.replay)-first)
	copy(out, f.replay[first:])
	return out
}

// Seq returns the last sequence number assigned in the user's feed.
func (h *Hub) Seq(userUID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.feeds[userUID]; ok {
		return f.seq
	}
	return 0
}

// Subscribers returns the number of live subscriptions of the user.
func (h *Hub) Subscribers(userUID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.feeds[userUID]; ok {
		return len(f.subs)
	}
	return 0
}

// detach must be called with h.mu held.
func (h *Hub) detach(s *Subscription) {
	f, ok := h.feeds[s.userUID]
	if !ok {
		return
	}
	if _, ok := f.subs[s]; !ok {
		return
	}
	delete(f.subs, s)
	close(s.ch)
}
