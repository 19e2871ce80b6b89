package checker

import (
	"sync"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// ResultSet collects outcomes from concurrent workers. Insertion is
// safe under concurrent writers; the accessors return copies so a
// reader never observes a partially written batch.
type ResultSet struct {
	mu       sync.Mutex
	outcomes []model.CheckOutcome
}

func NewResultSet(capacity int) *ResultSet {
	return &ResultSet{outcomes: make([]model.CheckOutcome, 0, capacity)}
}

// Add records one finished check.
func (s *ResultSet) Add(out model.CheckOutcome) {
	s.mu.Lock()
	s.outcomes = append(s.outcomes, out)
	s.mu.Unlock()
}

// Len returns the number of resolved checks so far.
func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes)
}

// Outcomes returns a copy of every recorded outcome.
func (s *ResultSet) Outcomes() []model.CheckOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CheckOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Alive returns the outcomes of working proxies only.
func (s *ResultSet) Alive() []model.CheckOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	var alive []model.CheckOutcome
	for _, o := range s.outcomes {
		if o.Alive() {
			alive = append(alive, o)
		}
	}
	return alive
}
