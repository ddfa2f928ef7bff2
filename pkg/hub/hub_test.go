package hub

import (
	"context"
	"testing"
	"time"
)

// attach registers a pump-less client directly; the pumps need a live
// websocket connection, but the broadcast loop does not.
func attach(t *testing.T, h *Hub, buffer int) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan Message, buffer)}
	select {
	case h.register <- c:
	case <-time.After(time.Second):
		t.Fatal("register blocked; is the hub running?")
	}
	waitFor(t, func() bool { return h.ClientCount() > 0 })
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := attach(t, h, 8)

	if err := h.BroadcastJSON(map[string]string{"level": "SAFE"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	select {
	case msg := <-c.send:
		if msg.Type != JSONMessage {
			t.Errorf("type: got %d, want JSONMessage", msg.Type)
		}
		if string(msg.Data) != `{"level":"SAFE"}` {
			t.Errorf("data: %s", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestHub_BinaryBroadcast(t *testing.T) {
	h := New("frames")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := attach(t, h, 8)
	h.BroadcastBinary([]byte{0xff, 0xd8, 0xff})

	select {
	case msg := <-c.send:
		if msg.Type != BinaryMessage {
			t.Errorf("type: got %d, want BinaryMessage", msg.Type)
		}
		if len(msg.Data) != 3 || msg.Data[0] != 0xff {
			t.Errorf("data: %v", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("binary message never delivered")
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// Zero-buffer subscriber that never drains.
	attach(t, h, 0)

	h.Broadcast(NewJSONMessage([]byte(`{}`)))
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := New("alerts")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := attach(t, h, 8)
	h.unregister <- c
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("send delivered a message after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_CancelClosesAllSubscribers(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := attach(t, h, 8)
	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("unexpected message during shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed on shutdown")
	}
}
