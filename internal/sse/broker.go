// Package sse streams note changes to dev-server clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/tilog/internal/models"
)

// Event types sent to clients.
const (
	TypeNoteCreated = "note.created"
	TypeNoteUpdated = "note.updated"
	TypeNoteDeleted = "note.deleted"
	TypeSiteReload  = "site.reload"
)

// DefaultReloadThrottle is the minimum gap between two site.reload events.
const DefaultReloadThrottle = time.Second

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NoteData is the payload of the note.* events.
type NoteData struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
}

type noteChange struct {
	kind     string
	filename string
}

// Broker fans events out to subscribed clients.
//
// A single event loop owns the client set, the event sequence and the reload
// throttle; public methods talk to it through channels.
type Broker struct {
	reloadMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	noteCh        chan noteChange
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that sends at most one site.reload per
// reloadThrottle.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = DefaultReloadThrottle
	}
	b := &Broker{
		reloadMin:     reloadThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		noteCh:        make(chan noteChange, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq        uint64
		lastReload time.Time
	)

	broadcast := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		seq++
		msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload))
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.publishCh:
			broadcast(ev)

		case c := <-b.noteCh:
			typ, ok := noteEventType(c.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: NoteData{
				Filename: c.filename,
				ID:       strings.TrimSuffix(c.filename, models.NoteExt),
			}})
			if now := time.Now(); now.Sub(lastReload) >= b.reloadMin {
				lastReload = now
				broadcast(Event{Type: TypeSiteReload, Data: struct{}{}})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

func noteEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeNoteCreated, true
	case "updated":
		return TypeNoteUpdated, true
	case "deleted":
		return TypeNoteDeleted, true
	}
	return "", false
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends ev to every client.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- ev:
	case <-b.stopped:
	}
}

// PublishNoteChange sends a note.<kind> event followed by a throttled
// site.reload. kind is "created", "updated" or "deleted"; anything else is
// ignored.
func (b *Broker) PublishNoteChange(kind, filename string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.noteCh <- noteChange{kind: kind, filename: filename}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
