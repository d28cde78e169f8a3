// Package counter keeps the running total of grant estimates served.
package counter

import (
	"context"
	"fmt"

	"irishgrants/internal/config"
)

// Store is a monotonically increasing counter.
type Store interface {
	Increment(ctx context.Context) (int64, error)
	Get(ctx context.Context) (int64, error)
	Close() error
}

// seed is the starting value when no saved count exists.
const seed = 0

// Open returns the backend selected by COUNTER_BACKEND.
func Open(cfg config.Config) (Store, error) {
	switch cfg.CounterBackend {
	case "", "file":
		return NewFileStore(cfg.CounterFile), nil
	case "redis":
		s := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := s.Ping(context.Background()); err != nil {
			s.Close()
			return nil, fmt.Errorf("counter: redis %s: %w", cfg.RedisAddr, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("counter: unknown backend %q", cfg.CounterBackend)
	}
}
