package push

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSocketIO = "socketio"
	DriverPubSub   = "pubsub"
	DriverSQS      = "sqs"
	DriverRedis    = "redis"
)

// Options selects and configures a push transport. The socketio driver connects to URL, or to
// APIHost when URL is empty.
type Options struct {
	Driver       string
	APIHost      string
	URL          string
	QueueURL     string
	WaitTime     time.Duration
	RedisAddr    string
	RedisChannel string
	Event        string
}

// Open builds the Source named by opts.Driver. It returns a nil Source for DriverNone, and a nil
// Source whenever err is non-nil.
func Open(ctx context.Context, opts Options, log *slog.Logger) (Source, error) {
	event := opts.Event
	if event == "" {
		event = DefaultEvent
	}

	switch opts.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverSocketIO:
		host := opts.URL
		if host == "" {
			host = opts.APIHost
		}
		if host == "" {
			return nil, fmt.Errorf("push driver %q needs a URL or API host", opts.Driver)
		}
		src, err := OpenSocketIO(ctx, host, event, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	case DriverPubSub:
		if opts.URL == "" {
			return nil, fmt.Errorf("push driver %q needs a subscription URL", opts.Driver)
		}
		src, err := OpenPubSub(ctx, opts.URL, event, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	case DriverSQS:
		if opts.QueueURL == "" {
			return nil, fmt.Errorf("push driver %q needs a queue URL", opts.Driver)
		}
		src, err := OpenSQS(ctx, opts.QueueURL, opts.WaitTime, event, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	case DriverRedis:
		channel := opts.RedisChannel
		if channel == "" {
			channel = event
		}
		src, err := OpenRedis(ctx, &redis.Options{Addr: opts.RedisAddr}, channel, event, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown push driver %q", opts.Driver)
	}
}
