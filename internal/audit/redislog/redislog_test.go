package redislog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := encode(audit.Entry{ID: "S1", Name: "Ada", Year: "2", Department: "CS"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"S1","name":"Ada","year":"2","department":"CS"}`, string(b))
}

func TestNew_EmptyAddr(t *testing.T) {
	_, err := New(context.Background(), "", "")
	assert.Error(t, err)
}

func TestNewWithClient_DefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	assert.Equal(t, DefaultKey, NewWithClient(client, "").key)
}

// Runs only against a real server: REDISLOG_TEST_ADDR=localhost:6379 go test ./...
func TestAppend_Redis(t *testing.T) {
	addr := os.Getenv("REDISLOG_TEST_ADDR")
	if addr == "" {
		t.Skip("REDISLOG_TEST_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "students:audit:test:" + uuid.NewString()
	l, err := New(ctx, addr, key)
	require.NoError(t, err)
	defer l.Close()
	defer l.client.Del(context.Background(), key)

	require.NoError(t, l.Append(ctx, audit.Entry{ID: "S1", Name: "Ada"}))
	require.NoError(t, l.Append(ctx, audit.Entry{ID: "S2", Name: "Bob"}))

	items, err := l.client.LRange(ctx, key, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.JSONEq(t, `["Student ID","Name","Year","Department"]`, items[0])
	assert.JSONEq(t, `{"id":"S1","name":"Ada","year":"","department":""}`, items[1])
}
