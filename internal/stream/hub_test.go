package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

func testFrame(tick int) sandbox.Frame {
	return sandbox.Frame{
		Tick:    tick,
		Elapsed: float64(tick) / 60,
		Objects: []sandbox.ObjectState{{
			ID:          3,
			Shape:       "box",
			Position:    [3]float64{1, 2, 3},
			Quaternion:  [4]float64{0, 0, 0, 1},
			Scale:       [3]float64{0.5, 0.25, 0.75},
			Highlighted: true,
			Sleeping:    true,
		}},
	}
}

func TestEncodeWireFormat(t *testing.T) {
	data, err := Encode(testFrame(7))
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"tick", "elapsed", "objects"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	obj := raw["objects"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "shape", "position", "quaternion", "scale", "highlighted"} {
		if _, ok := obj[key]; !ok {
			t.Errorf("object missing key %q", key)
		}
	}
	if _, ok := obj["sleeping"]; ok {
		t.Error("sleeping leaked onto the wire")
	}
	if !strings.Contains(string(data), `"quaternion":[0,0,0,1]`) {
		t.Errorf("quaternion not encoded as x,y,z,w: %s", data)
	}
}

func TestOnFrameNeverBlocks(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	done := make(chan struct{})
	go func() {
		for i := 1; i <= 100; i++ {
			h.OnFrame(testFrame(i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnFrame blocked without a running hub")
	}

	f := <-h.frames
	if f.Tick != 100 {
		t.Errorf("queued tick %d, want latest 100", f.Tick)
	}
	if _, dropped := h.Stats(); dropped != 99 {
		t.Errorf("dropped %d, want 99", dropped)
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.OnFrame(testFrame(12))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Tick != 12 || len(msg.Objects) != 1 {
		t.Fatalf("message = %+v", msg)
	}
	if o := msg.Objects[0]; o.ID != 3 || o.Shape != "box" || o.Position != [3]float64{1, 2, 3} || !o.Highlighted {
		t.Errorf("object = %+v", o)
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for h.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("clients not released after shutdown")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
