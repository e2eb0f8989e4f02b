package redis_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/gosuda/trackly/internal/store/redis"
)

func TestActivityChannel(t *testing.T) {
	t.Parallel()

	workspaceID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivityChannel(workspaceID)
		assert.Equal(t, "activity:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("nil UUID", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivityChannel(uuid.Nil)
		assert.Equal(t, "activity:00000000-0000-0000-0000-000000000000", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivityChannel(workspaceID)
		assert.True(t, strings.HasPrefix(got, "activity:"), "expected prefix 'activity:', got %q", got)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := redisstore.ActivityChannel(workspaceID)
		b := redisstore.ActivityChannel(workspaceID)
		assert.Equal(t, a, b)
	})

	t.Run("different workspaces produce different channels", func(t *testing.T) {
		t.Parallel()

		other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
		assert.NotEqual(t, redisstore.ActivityChannel(workspaceID), redisstore.ActivityChannel(other))
	})
}

func TestNew_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 is reserved; nothing answers there.
	ps, err := redisstore.New(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Nil(t, ps)
	assert.Contains(t, err.Error(), "redis.New: ping")
}

// testRedis connects to TRACKLY_TEST_REDIS_ADDR or skips.
func testRedis(t *testing.T) *redisstore.PubSub {
	t.Helper()

	addr := os.Getenv("TRACKLY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRACKLY_TEST_REDIS_ADDR not set")
	}

	ps, err := redisstore.New(t.Context(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func TestPubSub_RoundTrip(t *testing.T) {
	ps := testRedis(t)
	require.NoError(t, ps.Ping(t.Context()))

	channel := redisstore.ActivityChannel(uuid.New())
	msgs, cleanup, err := ps.Subscribe(t.Context(), channel)
	require.NoError(t, err)
	defer cleanup()

	// Another workspace's channel is not delivered here.
	require.NoError(t, ps.Publish(t.Context(), redisstore.ActivityChannel(uuid.New()), []byte(`{"id":"other"}`)))
	require.NoError(t, ps.Publish(t.Context(), channel, []byte(`{"id":"first"}`)))
	require.NoError(t, ps.Publish(t.Context(), channel, []byte(`{"id":"second"}`)))

	for _, want := range []string{`{"id":"first"}`, `{"id":"second"}`} {
		select {
		case got := <-msgs:
			assert.JSONEq(t, want, string(got))
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestPubSub_CleanupClosesChannel(t *testing.T) {
	ps := testRedis(t)

	msgs, cleanup, err := ps.Subscribe(t.Context(), redisstore.ActivityChannel(uuid.New()))
	require.NoError(t, err)
	cleanup()

	select {
	case _, open := <-msgs:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cleanup")
	}
}
