package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// drain reads one message off a client's send channel with a timeout.
func drain(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func waitForCount(t *testing.T, h *Hub, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d, got %d", want, h.ClientCount())
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c1 := NewClient(h, nil)
	c2 := NewClient(h, nil)
	h.Register(c1)
	h.Register(c2)
	waitForCount(t, h, 2)

	h.Broadcast(EventActionUpdated, map[string]string{"action_id": "a1"})

	for _, c := range []*Client{c1, c2} {
		var ev Event
		if err := json.Unmarshal(drain(t, c), &ev); err != nil {
			t.Fatalf("invalid event JSON: %v", err)
		}
		if ev.Type != EventActionUpdated {
			t.Errorf("event type = %q, want %q", ev.Type, EventActionUpdated)
		}
		var data map[string]string
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			t.Fatalf("invalid event data: %v", err)
		}
		if data["action_id"] != "a1" {
			t.Errorf("unexpected data: %v", data)
		}
	}

	h.Unregister(c1)
	waitForCount(t, h, 1)
}

func TestHub_EventIDsIncrease(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := NewClient(h, nil)
	h.Register(c)
	waitForCount(t, h, 1)

	h.Broadcast(EventAlertsEligible, []string{"rice"})
	h.Broadcast(EventAlertsEligible, []string{"tofu"})

	var first, second Event
	if err := json.Unmarshal(drain(t, c), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(drain(t, c), &second); err != nil {
		t.Fatal(err)
	}
	if second.ID <= first.ID {
		t.Errorf("event IDs should increase: %d then %d", first.ID, second.ID)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := NewClient(h, nil)
	h.Register(c)
	waitForCount(t, h, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop on context cancel")
	}

	if h.ClientCount() != 0 {
		t.Errorf("client count = %d after shutdown, want 0", h.ClientCount())
	}

	// The send channel must be closed so WritePump exits.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_BroadcastUnmarshalableDropped(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := NewClient(h, nil)
	h.Register(c)
	waitForCount(t, h, 1)

	h.Broadcast(EventActionUpdated, make(chan int)) // not JSON-encodable

	select {
	case msg := <-c.send:
		t.Errorf("expected no broadcast, got %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
