// Package sse streams note change events to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventNoteCreated       = "note.created"
	EventNoteUpdated       = "note.updated"
	EventNoteDeleted       = "note.deleted"
	EventCategoriesUpdated = "categories.updated"
)

// Event is one message on the stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type noteChange struct {
	kind              string
	id                string
	categoriesChanged bool
}

// Broker fans events out to subscribers.
//
// A single goroutine owns the client set and the categories throttle; the
// public methods only talk to it over channels.
type Broker struct {
	throttle time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan noteChange
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits categories.updated at most once per
// throttle window, with a trailing event for changes inside the window.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:      throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan noteChange, 256),
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

	// categories.updated goes out at most once per throttle window. A change
	// inside the window is held until the window closes.
	var (
		lastCategories time.Time
		trailing       *time.Timer
		trailingC      <-chan time.Time
	)
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
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

		case event := <-b.publishCh:
			broadcast(event)

		case c := <-b.changeCh:
			typ, ok := changeEventType(c.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"id": c.id}})

			if !c.categoriesChanged || trailingC != nil {
				continue
			}
			if wait := b.throttle - time.Since(lastCategories); wait > 0 {
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
				continue
			}
			lastCategories = time.Now()
			broadcast(Event{Type: EventCategoriesUpdated, Data: map[string]string{}})

		case <-trailingC:
			trailingC = nil
			lastCategories = time.Now()
			broadcast(Event{Type: EventCategoriesUpdated, Data: map[string]string{}})

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

func changeEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return EventNoteCreated, true
	case "updated":
		return EventNoteUpdated, true
	case "deleted":
		return EventNoteDeleted, true
	}
	return "", false
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client and returns its message channel.
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

// Publish sends an arbitrary event to all clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishNoteChange broadcasts a note change and, when categoriesChanged is
// set, schedules a categories.updated event. Its signature matches
// noteservice.ChangeCallback.
func (b *Broker) PublishNoteChange(kind, id string, categoriesChanged bool) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- noteChange{kind: kind, id: id, categoriesChanged: categoriesChanged}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client until it disconnects.
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
