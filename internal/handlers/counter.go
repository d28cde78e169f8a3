package handlers

import (
	"context"
	"sync"

	"irishgrants/internal/counter"
	"irishgrants/internal/logger"
)

var (
	counterMu    sync.RWMutex
	counterStore counter.Store
)

// SetCounter installs the store that counts estimates. A nil store disables counting.
func SetCounter(s counter.Store) {
	counterMu.Lock()
	counterStore = s
	counterMu.Unlock()
}

func countEstimate(ctx context.Context) {
	counterMu.RLock()
	s := counterStore
	counterMu.RUnlock()
	if s == nil {
		return
	}
	if _, err := s.Increment(ctx); err != nil {
		logger.Warn("counter: increment failed", map[string]interface{}{"error": err.Error()})
	}
}

func estimateCount(ctx context.Context) int64 {
	counterMu.RLock()
	s := counterStore
	counterMu.RUnlock()
	if s == nil {
		return 0
	}
	n, err := s.Get(ctx)
	if err != nil {
		logger.Warn("counter: read failed", map[string]interface{}{"error": err.Error()})
		return 0
	}
	return n
}
