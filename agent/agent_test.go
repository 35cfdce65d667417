package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gitlab.com/tinyland/lab/pulse-view/collectors"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixedSampler(cpu float64) collectors.Sampler {
	return collectors.SamplerFunc(func(ctx context.Context) (metrics.Snapshot, error) {
		return metrics.Snapshot{
			Timestamp:        time.Unix(1700000000, 0).UTC(),
			CPUPercent:       cpu,
			MemoryPercent:    40,
			MemoryTotalBytes: 1024,
			LoadAverage:      0.5,
		}, nil
	})
}

func startServer(t *testing.T, s *Server) (*httptest.Server, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go s.Hub().Run(ctx)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, cancel
}

func TestHealth(t *testing.T) {
	srv, _ := startServer(t, NewServer(fixedSampler(1), time.Second, nil))

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
}

func TestStats_DecodesAsSnapshot(t *testing.T) {
	srv, _ := startServer(t, NewServer(fixedSampler(33.3), time.Second, nil))

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := transport.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("stats payload should pass stream validation: %v", err)
	}
	if snap.CPUPercent != 33.3 || snap.MemoryTotalBytes != 1024 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestStats_SamplerError(t *testing.T) {
	failing := collectors.SamplerFunc(func(context.Context) (metrics.Snapshot, error) {
		return metrics.Snapshot{}, errors.New("no readings")
	})
	srv, _ := startServer(t, NewServer(failing, time.Second, nil))

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestWebSocket_ReceivesPublishedSnapshots(t *testing.T) {
	s := NewServer(fixedSampler(1), time.Second, nil)
	srv, _ := startServer(t, s)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, cpu := range []float64{10, 20} {
		if err := s.Hub().Publish(metrics.Snapshot{CPUPercent: cpu}); err != nil {
			t.Fatal(err)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got []float64
	for len(got) < 2 {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		snaps, errs := transport.DecodeFrame(frame)
		if len(errs) > 0 {
			t.Fatalf("unexpected decode errors: %v", errs)
		}
		for _, sn := range snaps {
			got = append(got, sn.CPUPercent)
		}
	}
	if got[0] != 10 || got[1] != 20 {
		t.Errorf("expected snapshots in publish order, got %v", got)
	}
	if s.Hub().Last() == nil {
		t.Error("expected the hub to remember the last message")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	s := NewServer(fixedSampler(1), time.Second, nil)
	srv, cancel := startServer(t, s)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close after hub shutdown")
	}
}

func TestNormalizeAddr(t *testing.T) {
	tests := map[string]string{
		"":             ":8080",
		"9000":         ":9000",
		":9000":        ":9000",
		"127.0.0.1:80": "127.0.0.1:80",
	}
	for in, want := range tests {
		if got := NormalizeAddr(in); got != want {
			t.Errorf("NormalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBatchFrames_StaysUnderClientLimit(t *testing.T) {
	if maxFrameSize > transport.MaxFrameSize {
		t.Fatalf("frame cap %d exceeds the client read limit %d", maxFrameSize, transport.MaxFrameSize)
	}

	msg := []byte(strings.Repeat("x", 350))
	queue := make(chan []byte, sendBuffer)
	for range sendBuffer {
		queue <- msg
	}

	frames := batchFrames(msg, queue, maxFrameSize)
	if len(frames) < 2 {
		t.Fatalf("expected a full queue to split into several frames, got %d", len(frames))
	}
	total := 0
	for i, f := range frames {
		if len(f) > maxFrameSize {
			t.Errorf("frame %d is %d bytes, over %d", i, len(f), maxFrameSize)
		}
		for part := range strings.SplitSeq(string(f), "\n") {
			if part != string(msg) {
				t.Fatalf("frame %d holds a corrupted message", i)
			}
			total++
		}
	}
	if total != sendBuffer+1 {
		t.Errorf("expected %d messages across frames, got %d", sendBuffer+1, total)
	}
	if len(queue) != 0 {
		t.Errorf("expected the queue drained, %d left", len(queue))
	}
}

func TestBatchFrames_OversizedMessageAlone(t *testing.T) {
	queue := make(chan []byte, 2)
	queue <- []byte(strings.Repeat("y", 20))
	queue <- []byte("z")

	frames := batchFrames([]byte("a"), queue, 10)
	want := []string{"a", strings.Repeat("y", 20), "z"}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for i := range want {
		if string(frames[i]) != want[i] {
			t.Errorf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}
