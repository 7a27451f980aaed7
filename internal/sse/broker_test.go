package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// drain collects whatever is buffered on ch after a short settle.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
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

func TestPublish_FramesWithSequence(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "custom", Data: map[string]string{"k": "v"}})
	b.Publish(Event{Type: "custom", Data: map[string]string{"k": "w"}})

	msgs := drain(ch)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if !strings.HasPrefix(msgs[0], "id: 1\nevent: custom\n") || !strings.Contains(msgs[0], `"k":"v"`) {
		t.Errorf("first frame = %q", msgs[0])
	}
	if !strings.HasPrefix(msgs[1], "id: 2\n") {
		t.Errorf("second frame = %q", msgs[1])
	}
}

func TestPublishNoteChange_ReloadThrottled(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("created", "01HZX0000000000000000000AA.md")
	b.PublishNoteChange("updated", "01HZX1000000000000000000AA.md")
	b.PublishNoteChange("renamed", "ignored.md")

	reloads, notes := 0, 0
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "event: "+TypeSiteReload):
			reloads++
		case strings.Contains(s, "event: note."):
			notes++
		}
	}
	if notes != 2 {
		t.Errorf("note events = %d, want 2", notes)
	}
	if reloads != 1 {
		t.Errorf("reload events = %d, want 1", reloads)
	}
}

func TestPublishNoteChange_Payload(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("deleted", "01HZX0000000000000000000AA.md")
	msgs := drain(ch)
	if len(msgs) == 0 {
		t.Fatal("no messages")
	}
	want := `{"filename":"01HZX0000000000000000000AA.md","id":"01HZX0000000000000000000AA"}`
	if !strings.Contains(msgs[0], "event: "+TypeNoteDeleted) || !strings.Contains(msgs[0], want) {
		t.Errorf("frame = %q", msgs[0])
	}
}

// flushRecorder guards the recorder body against the concurrent read below.
type flushRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func (f *flushRecorder) Header() http.Header { return f.rec.Header() }
func (f *flushRecorder) WriteHeader(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.WriteHeader(code)
}
func (f *flushRecorder) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.Write(p)
}
func (f *flushRecorder) Flush() {}
func (f *flushRecorder) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &flushRecorder{rec: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishNoteChange("updated", "x.md")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: "+TypeNoteUpdated) {
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

	// Client buffer holds 64; the rest must be dropped without blocking.
	for range 70 {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	if n := len(drain(ch)); n != 64 {
		t.Errorf("buffered = %d, want 64", n)
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

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
	b.Publish(Event{Type: "x"})
	b.PublishNoteChange("updated", "x.md")
	b.Close()
}
