package push

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSourceSignalsEveryMessage(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := OpenRedis(ctx, &redis.Options{Addr: mr.Addr()}, "noteboard:events", DefaultEvent, discardLogger())
	require.NoError(t, err)
	defer src.Close(context.Background())

	assert.Equal(t, 1, mr.Publish("noteboard:events", "anything"))

	sig, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultEvent, sig.Event)

	require.NoError(t, src.Close(context.Background()))
	require.NoError(t, src.Close(context.Background()))
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), &redis.Options{Addr: addr}, "c", DefaultEvent, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not connect to redis")
}
