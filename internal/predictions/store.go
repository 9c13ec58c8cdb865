// Package predictions holds the session-scoped prediction history.
package predictions

import (
	"sync"
	"sync/atomic"
	"time"

	"covidrisk/internal/models"
)

// Sequence hands out strictly increasing record ids starting at 1.
// A single Sequence may back many stores.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Store is the ordered, most-recent-first history of one session.
// Records are only ever prepended.
type Store struct {
	mu          sync.RWMutex
	seq         *Sequence
	records     []models.PredictionRecord
	subscribers map[int]chan struct{}
	nextSubID   int
	now         func() time.Time
}

// NewStore creates an empty store with its own id sequence.
func NewStore() *Store {
	return NewStoreWithSequence(&Sequence{})
}

// NewStoreWithSequence creates an empty store drawing ids from seq.
func NewStoreWithSequence(seq *Sequence) *Store {
	return &Store{
		seq:         seq,
		subscribers: make(map[int]chan struct{}),
		now:         time.Now,
	}
}

// Add records a completed prediction and notifies subscribers. Input is
// trusted to have been validated already.
func (s *Store) Add(in models.PredictionInput, risk models.Risk) models.PredictionRecord {
	s.mu.Lock()
	rec := models.PredictionRecord{
		ID:           s.seq.Next(),
		CasesPer100k: in.CasesPer100k,
		MedianAge:    in.MedianAge,
		Aged65Above:  in.Aged65Above,
		Risk:         risk,
		Timestamp:    s.now(),
	}

	records := make([]models.PredictionRecord, 0, len(s.records)+1)
	records = append(records, rec)
	records = append(records, s.records...)
	s.records = records

	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	return rec
}

// List returns a copy of the history, most recent first.
func (s *Store) List() []models.PredictionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PredictionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe returns a channel that receives a signal after each Add.
// Signals coalesce: a slow reader sees at most one pending notification.
// The returned function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
}

// Close drops all subscribers. The history itself is left to the garbage
// collector.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}
