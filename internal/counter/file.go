package counter

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type counterData struct {
	Estimates int64 `json:"estimates"`
}

const flushEveryN = 10
const flushInterval = 30 * time.Second

// FileStore keeps the count in memory and writes it to a JSON file every
// flushEveryN increments or flushInterval, whichever comes first.
type FileStore struct {
	path string

	mu            sync.Mutex
	value         int64
	pendingWrites int

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path, value: seed, done: make(chan struct{})}

	data, err := os.ReadFile(path)
	switch {
	case err != nil:
		log.Printf("[counter] %s not found, starting at %d", path, s.value)
	default:
		var cd counterData
		if err := json.Unmarshal(data, &cd); err != nil {
			log.Printf("[counter] parse %s: %v, starting at %d", path, err, s.value)
		} else {
			s.value = cd.Estimates
			log.Printf("[counter] loaded count: %d", s.value)
		}
	}

	s.ticker = time.NewTicker(flushInterval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.flush()
			case <-s.done:
				return
			}
		}
	}()
	return s
}

func (s *FileStore) Increment(ctx context.Context) (int64, error) {
	s.mu.Lock()
	s.value++
	val := s.value
	s.pendingWrites++
	shouldFlush := s.pendingWrites >= flushEveryN
	s.mu.Unlock()

	if shouldFlush {
		s.flush()
	}
	return val, nil
}

func (s *FileStore) Get(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// Close stops the flush loop and writes any pending count.
func (s *FileStore) Close() error {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return s.flush()
}

func (s *FileStore) flush() error {
	s.mu.Lock()
	if s.pendingWrites == 0 {
		s.mu.Unlock()
		return nil
	}
	val := s.value
	s.pendingWrites = 0
	s.mu.Unlock()

	data, err := json.Marshal(counterData{Estimates: val})
	if err != nil {
		log.Printf("[counter] marshal: %v", err)
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("[counter] write %s: %v", s.path, err)
		return err
	}
	return nil
}
