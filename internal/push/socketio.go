package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Engine.IO v4 packet types, and the socket.io packet types carried in a message packet.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'

	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

const (
	socketIOMaxBackoff = 30 * time.Second
	socketIODialWait   = 10 * time.Second
)

var errSocketClosed = errors.New("socket.io source closed")

// SocketIOSource listens on the API host's socket.io channel, speaking Engine.IO v4 over a
// websocket on the default namespace. A dropped connection is redialled with backoff.
type SocketIOSource struct {
	endpoint string
	event    string
	log      *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// OpenSocketIO connects to the socket.io server at host (http, https, ws or wss; a bare
// host:port means http) and joins the default namespace.
func OpenSocketIO(ctx context.Context, host, event string, log *slog.Logger) (*SocketIOSource, error) {
	if log == nil {
		log = slog.Default()
	}
	endpoint, err := socketIOEndpoint(host)
	if err != nil {
		return nil, err
	}
	s := &SocketIOSource{endpoint: endpoint, event: event, log: log.With("push", "socketio")}
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func socketIOEndpoint(host string) (string, error) {
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse socket.io host: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported socket.io scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// dial opens the websocket and completes the Engine.IO and namespace handshakes.
func (s *SocketIOSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, socketIODialWait)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.endpoint, err)
	}

	fail := func(err error) (*websocket.Conn, error) {
		conn.CloseNow()
		return nil, err
	}

	_, data, err := conn.Read(dialCtx)
	if err != nil {
		return fail(fmt.Errorf("read engine.io open: %w", err))
	}
	if len(data) == 0 || data[0] != eioOpen {
		return fail(fmt.Errorf("unexpected engine.io handshake %q", data))
	}

	if err := conn.Write(dialCtx, websocket.MessageText, []byte{eioMessage, sioConnect}); err != nil {
		return fail(fmt.Errorf("join namespace: %w", err))
	}
	for {
		_, data, err := conn.Read(dialCtx)
		if err != nil {
			return fail(fmt.Errorf("read namespace ack: %w", err))
		}
		switch {
		case len(data) >= 2 && data[0] == eioMessage && data[1] == sioConnect:
			s.log.Debug("socket.io connected", "endpoint", s.endpoint)
			return conn, nil
		case len(data) >= 2 && data[0] == eioMessage && data[1] == sioConnectError:
			return fail(fmt.Errorf("socket.io connect refused: %s", data[2:]))
		case len(data) == 1 && data[0] == eioPing:
			if err := conn.Write(dialCtx, websocket.MessageText, []byte{eioPong}); err != nil {
				return fail(fmt.Errorf("pong: %w", err))
			}
		}
	}
}

// Next blocks until an event named s.event arrives. Pings are answered along the way.
func (s *SocketIOSource) Next(ctx context.Context) (Signal, error) {
	backoff := time.Second
	for {
		conn, err := s.current()
		if err != nil {
			return Signal{}, err
		}
		if conn == nil {
			conn, err = s.redial(ctx)
			if err != nil {
				if errors.Is(err, errSocketClosed) || ctx.Err() != nil {
					return Signal{}, err
				}
				s.log.Warn("socket.io reconnect failed", "error", err, "retry_in", backoff)
				select {
				case <-ctx.Done():
					return Signal{}, ctx.Err()
				case <-time.After(backoff):
				}
				backoff = min(backoff*2, socketIOMaxBackoff)
				continue
			}
			backoff = time.Second
		}

		sig, err := s.read(ctx, conn)
		if err == nil {
			return sig, nil
		}
		if ctx.Err() != nil {
			return Signal{}, ctx.Err()
		}
		s.mu.Lock()
		closed := s.closed
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.CloseNow()
		if closed {
			return Signal{}, errSocketClosed
		}
		s.log.Warn("socket.io connection lost", "error", err)
	}
}

func (s *SocketIOSource) read(ctx context.Context, conn *websocket.Conn) (Signal, error) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return Signal{}, err
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case eioPing:
			if err := conn.Write(ctx, websocket.MessageText, []byte{eioPong}); err != nil {
				return Signal{}, err
			}
		case eioClose:
			return Signal{}, errors.New("engine.io close packet")
		case eioMessage:
			if len(data) < 2 {
				continue
			}
			switch data[1] {
			case sioDisconnect:
				return Signal{}, errors.New("socket.io disconnect packet")
			case sioEvent:
				if Matches(s.event, eventPayload(data[2:]), nil) {
					return Signal{Event: s.event, At: time.Now()}, nil
				}
			}
		}
	}
}

// eventPayload strips an optional ack id in front of the ["name", ...] array.
func eventPayload(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	return b[i:]
}

func (s *SocketIOSource) current() (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSocketClosed
	}
	return s.conn, nil
}

func (s *SocketIOSource) redial(ctx context.Context) (*websocket.Conn, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.CloseNow()
		return nil, errSocketClosed
	}
	s.conn = conn
	return conn, nil
}

func (s *SocketIOSource) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	// Tell the server we are leaving the namespace before the websocket goes away.
	_ = conn.Write(ctx, websocket.MessageText, []byte{eioMessage, sioDisconnect})
	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		s.log.Debug("socket.io close", "error", err)
	}
	return nil
}
