package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSource reads signals from a Redis pub/sub channel. The channel is dedicated to the event,
// so every message on it is a signal.
type RedisSource struct {
	client  *redis.Client
	ps      *redis.PubSub
	channel string
	event   string
	log     *slog.Logger

	once     sync.Once
	closeErr error
}

// OpenRedis connects, subscribes to channel and waits for the subscription to be confirmed.
func OpenRedis(ctx context.Context, opts *redis.Options, channel, event string, log *slog.Logger) (*RedisSource, error) {
	if log == nil {
		log = slog.Default()
	}
	rdb := redis.NewClient(opts)

	// doing in a func, so I can use defer to cancel the context
	if err := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	}(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	ps := rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	return &RedisSource{
		client:  rdb,
		ps:      ps,
		channel: channel,
		event:   event,
		log:     log,
	}, nil
}

func (s *RedisSource) Next(ctx context.Context) (Signal, error) {
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		return Signal{}, err
	}
	s.log.Debug("redis push message", "channel", msg.Channel)
	return Signal{Event: s.event, At: time.Now()}, nil
}

func (s *RedisSource) Close(ctx context.Context) error {
	s.once.Do(func() {
		if err := s.ps.Close(); err != nil {
			s.closeErr = err
		}
		if err := s.client.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
