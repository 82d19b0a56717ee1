package usecase

import (
	"context"
	"sync"
	"time"

	"TrendWatch/internal/domain/models"
)

type fakeMarket struct {
	points map[string][]models.RawPoint
	err    error
	calls  []string
}

func (f *fakeMarket) FetchDailyCloses(_ context.Context, ticker string, _ int) ([]models.RawPoint, error) {
	f.calls = append(f.calls, ticker)
	if f.err != nil {
		return nil, f.err
	}
	return f.points[ticker], nil
}

type memWatchlist struct {
	mu   sync.Mutex
	rows map[int64][]string
	err  error
}

func newMemWatchlist() *memWatchlist {
	return &memWatchlist{rows: make(map[int64][]string)}
}

func (m *memWatchlist) AddIfAbsent(_ context.Context, id models.Identity, ticker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, t := range m.rows[id.UserID] {
		if t == ticker {
			return false, nil
		}
	}
	m.rows[id.UserID] = append(m.rows[id.UserID], ticker)
	return true, nil
}

func (m *memWatchlist) Remove(_ context.Context, id models.Identity, ticker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.rows[id.UserID]
	for i, t := range list {
		if t == ticker {
			m.rows[id.UserID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memWatchlist) ListFor(_ context.Context, id models.Identity) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.rows[id.UserID]...), nil
}

type recordingPublisher struct {
	events []models.WatchlistEvent
	err    error
}

func (p *recordingPublisher) PublishWatchlistEvent(_ context.Context, ev models.WatchlistEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingMetrics struct {
	outcomes  []string
	errors    []string
	lastClose map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{lastClose: make(map[string]float64)}
}

func (m *recordingMetrics) RecordForecast(_, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) RecordError(kind string) {
	m.errors = append(m.errors, kind)
}

func (m *recordingMetrics) RecordLastClose(t string, p float64) {
	m.lastClose[t] = p
}

func (m *recordingMetrics) RecordLatency(string, float64) {}

// linearCloses returns n consecutive days starting 2024-01-01 with close = 100 + i.
func linearCloses(n int) []models.RawPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.RawPoint, n)
	for i := range out {
		out[i] = models.RawPoint{Date: start.AddDate(0, 0, i), Close: models.SomeClose(100 + float64(i))}
	}
	return out
}
