package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const engineOpen = `0{"sid":"s1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`

// socketIOServer speaks just enough Engine.IO v4 for the client: open packet, namespace ack, one
// ping, then the scripted frames of the n-th connection (0-based).
type socketIOServer struct {
	*httptest.Server
	received chan string
	conns    atomic.Int32
}

func newSocketIOServer(t *testing.T, ack string, frames func(n int) []string) *socketIOServer {
	t.Helper()
	s := &socketIOServer{received: make(chan string, 64)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket.io/" || r.URL.Query().Get("EIO") != "4" {
			http.NotFound(w, r)
			return
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		n := int(s.conns.Add(1)) - 1

		ctx := r.Context()
		write := func(msg string) bool {
			return c.Write(ctx, websocket.MessageText, []byte(msg)) == nil
		}
		if !write(engineOpen) {
			return
		}
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		s.received <- string(data)
		if !write(ack) || !write("2") {
			return
		}
		for _, f := range frames(n) {
			if f == "" {
				c.Close(websocket.StatusGoingAway, "restart")
				return
			}
			if !write(f) {
				return
			}
		}
		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				return
			}
			s.received <- string(data)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *socketIOServer) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-s.received:
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("server never received %q", want)
	}
}

func TestSocketIOSourceSignalsOnNamedEvent(t *testing.T) {
	srv := newSocketIOServer(t, `40{"sid":"n1"}`, func(int) []string {
		return []string{`42["other",{}]`, `42["noteUpdated",{"id":"n1"}]`}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := OpenSocketIO(ctx, srv.URL, DefaultEvent, discardLogger())
	require.NoError(t, err)
	defer src.Close(context.Background())

	sig, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultEvent, sig.Event)

	srv.expect(t, "40")
	srv.expect(t, "3")
}

func TestSocketIOSourceReconnects(t *testing.T) {
	srv := newSocketIOServer(t, "40", func(n int) []string {
		if n == 0 {
			return []string{""}
		}
		return []string{`42["noteUpdated"]`}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := OpenSocketIO(ctx, srv.URL, DefaultEvent, discardLogger())
	require.NoError(t, err)
	defer src.Close(context.Background())

	sig, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultEvent, sig.Event)
	assert.Equal(t, int32(2), srv.conns.Load())
}

func TestSocketIOSourceCloseEndsNext(t *testing.T) {
	srv := newSocketIOServer(t, "40", func(int) []string { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := OpenSocketIO(ctx, srv.URL, DefaultEvent, discardLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := src.Next(ctx)
		done <- err
	}()

	require.NoError(t, src.Close(context.Background()))
	require.NoError(t, src.Close(context.Background()))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errSocketClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestOpenSocketIORefused(t *testing.T) {
	srv := newSocketIOServer(t, `44{"message":"not authorized"}`, func(int) []string { return nil })

	_, err := OpenSocketIO(context.Background(), srv.URL, DefaultEvent, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
}

func TestSocketIOEndpoint(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://localhost:5000", "ws://localhost:5000/socket.io/?EIO=4&transport=websocket"},
		{"localhost:5000", "ws://localhost:5000/socket.io/?EIO=4&transport=websocket"},
		{"https://api.example.com/base/", "wss://api.example.com/base/socket.io/?EIO=4&transport=websocket"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got, err := socketIOEndpoint(tt.host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := socketIOEndpoint("ftp://example.com")
	assert.Error(t, err)
}

func TestEventPayloadSkipsAckID(t *testing.T) {
	assert.Equal(t, `["noteUpdated"]`, string(eventPayload([]byte(`17["noteUpdated"]`))))
	assert.Equal(t, `["noteUpdated"]`, string(eventPayload([]byte(`["noteUpdated"]`))))
}
