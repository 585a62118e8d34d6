package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestNoteChangeDelivery(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("created", "abc", false)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"abc"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func countEvents(msgs []string) (categories, notes int) {
	for _, s := range msgs {
		if strings.Contains(s, EventCategoriesUpdated) {
			categories++
		} else {
			notes++
		}
	}
	return categories, notes
}

func TestCategoriesThrottle(t *testing.T) {
	b := NewBroker(300 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("created", "a", true)
	b.PublishNoteChange("updated", "b", true)
	b.PublishNoteChange("deleted", "c", true)
	b.PublishNoteChange("renamed", "d", true) // unknown kinds are ignored

	time.Sleep(50 * time.Millisecond)
	categories, notes := countEvents(drain(ch))
	if notes != 3 {
		t.Errorf("note events = %d, want 3", notes)
	}
	if categories != 1 {
		t.Errorf("categories events inside window = %d, want 1", categories)
	}

	// Changes inside the window are announced once the window closes.
	time.Sleep(500 * time.Millisecond)
	if categories, _ := countEvents(drain(ch)); categories != 1 {
		t.Errorf("trailing categories events = %d, want 1", categories)
	}
}

func TestCategoriesOnlyWhenChanged(t *testing.T) {
	b := NewBroker(10 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("updated", "a", false)
	b.PublishNoteChange("updated", "b", false)

	time.Sleep(100 * time.Millisecond)
	categories, notes := countEvents(drain(ch))
	if notes != 2 || categories != 0 {
		t.Errorf("notes = %d, categories = %d, want 2 and 0", notes, categories)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: EventNoteUpdated, Data: map[string]string{"id": "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.Body.String(); !strings.Contains(body, "event: note.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseIsFinal(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: EventNoteUpdated})
	b.PublishNoteChange("updated", "x", true)
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}
	b.Close()
}
