package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/shortlinks/internal/visits"
)

// VisitMemoryStore is an in-memory implementation of visits.Store.
type VisitMemoryStore struct {
	mu     sync.RWMutex
	visits []visits.Visit
}

// NewVisitMemoryStore creates a new in-memory visit store.
func NewVisitMemoryStore() *VisitMemoryStore {
	return &VisitMemoryStore{}
}

func (s *VisitMemoryStore) Record(_ context.Context, visit *visits.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visits = append(s.visits, *visit)

	return nil
}

func (s *VisitMemoryStore) DailyVisits(_ context.Context, owner string, since time.Time) ([]visits.DailyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[time.Time]int64)

	for _, v := range s.visits {
		if v.OwnerID != owner || v.VisitedAt.Before(since) {
			continue
		}

		counts[truncateDay(v.VisitedAt)]++
	}

	days := make([]visits.DailyCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, visits.DailyCount{Date: day, Visits: n})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	return days, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ visits.Store = (*VisitMemoryStore)(nil)
