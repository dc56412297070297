package push

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	src, err := Open(ctx, Options{Driver: DriverNone}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, src)

	_, err = Open(ctx, Options{Driver: "kafka"}, discardLogger())
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverPubSub}, discardLogger())
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverSQS}, discardLogger())
	assert.Error(t, err)
}

func TestOpenRedisDriver(t *testing.T) {
	mr := miniredis.RunT(t)

	src, err := Open(context.Background(), Options{Driver: DriverRedis, RedisAddr: mr.Addr()}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, src)
	defer src.Close(context.Background())

	// The channel defaults to the event name.
	assert.Equal(t, 1, mr.Publish(DefaultEvent, "x"))
}

func TestOpenSocketIODriverUsesAPIHost(t *testing.T) {
	srv := newSocketIOServer(t, "40", func(int) []string { return []string{`42["noteUpdated"]`} })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := Open(ctx, Options{Driver: DriverSocketIO, APIHost: srv.URL}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, src)
	defer src.Close(context.Background())

	sig, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultEvent, sig.Event)
}

func TestOpenFailureReturnsNilSource(t *testing.T) {
	srv := newSocketIOServer(t, `44{"message":"nope"}`, func(int) []string { return nil })
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	for _, opts := range []Options{
		{Driver: DriverSocketIO},
		{Driver: DriverSocketIO, APIHost: srv.URL},
		{Driver: DriverRedis, RedisAddr: addr},
		{Driver: DriverPubSub, URL: "nosuchscheme://topic"},
	} {
		src, err := Open(context.Background(), opts, discardLogger())
		require.Error(t, err, opts.Driver)
		assert.True(t, src == nil, "driver %s returned a non-nil Source with an error", opts.Driver)
	}
}
