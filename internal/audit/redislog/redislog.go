// Package redislog appends audit entries to a Redis list.
//
// Each entry is RPUSHed as a JSON object. When the push creates the list,
// the header is LPUSHed in front of it, so the list reads like the CSV
// log: header first, then rows in insertion order.
package redislog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the list key used when none is configured.
const DefaultKey = "students:audit"

// Compile-time check.
var _ audit.Sink = (*Log)(nil)

// Log is a Redis list audit sink.
type Log struct {
	client *redis.Client
	key    string
	mu     sync.Mutex
}

// New connects to addr and pings it.
func New(ctx context.Context, addr, key string) (*Log, error) {
	if addr == "" {
		return nil, errors.New("redislog.New: addr is empty")
	}
	if key == "" {
		key = DefaultKey
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redislog.New: ping %s: %w", addr, err)
	}
	return NewWithClient(client, key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, key string) *Log {
	if key == "" {
		key = DefaultKey
	}
	return &Log{client: client, key: key}
}

// Append pushes one row, and the header when the list is new.
func (l *Log) Append(ctx context.Context, entry audit.Entry) error {
	row, err := encode(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.client.RPush(ctx, l.key, row).Result()
	if err != nil {
		return fmt.Errorf("redislog.Append: rpush: %w", err)
	}
	if n == 1 {
		header, err := json.Marshal(audit.Header)
		if err != nil {
			return fmt.Errorf("redislog.Append: encode header: %w", err)
		}
		if err := l.client.LPush(ctx, l.key, header).Err(); err != nil {
			return fmt.Errorf("redislog.Append: lpush header: %w", err)
		}
	}
	return nil
}

// Close closes the client.
func (l *Log) Close() error {
	return l.client.Close()
}

func encode(entry audit.Entry) ([]byte, error) {
	b, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("redislog.Append: encode: %w", err)
	}
	return b, nil
}
