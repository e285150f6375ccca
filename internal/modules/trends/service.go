package trends

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher is the single-window trend operation the weekly service fans out
type Fetcher interface {
	HowsItTrending(ctx context.Context, keyword, startDate, endDate string) (TrendPoint, error)
}

// Service accumulates 7-day trend series. Each keyword's fan-out runs at
// most once per calendar day; within that day, later requests for the same
// keyword return the cached series, so re-mounting a ticker view never
// re-issues the 7 upstream calls. A fan-out that produced no points at all
// is not cached, so the next mount retries after an outage clears.
type Service struct {
	fetcher Fetcher
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*weeklyEntry
}

type weeklyEntry struct {
	day    string
	ready  chan struct{}
	points []TrendPoint
}

// NewService creates a weekly trend service.
func NewService(fetcher Fetcher, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		log:     log.With().Str("component", "trends_service").Logger(),
		now:     time.Now,
		entries: make(map[string]*weeklyEntry),
	}
}

// WeeklyTrend returns the keyword's trend series for the last 7 days,
// sorted ascending by period start date. Days whose fetch failed are
// dropped, so the series may hold fewer than 7 points; a day's failure is
// never surfaced to the caller.
func (s *Service) WeeklyTrend(ctx context.Context, keyword string) []TrendPoint {
	day := s.now().Format("2006-01-02")

	s.mu.Lock()
	if entry, ok := s.entries[keyword]; ok && entry.day == day {
		s.mu.Unlock()
		<-entry.ready
		return entry.points
	}

	entry := &weeklyEntry{day: day, ready: make(chan struct{})}
	s.entries[keyword] = entry
	s.mu.Unlock()

	entry.points = s.fetchWeek(ctx, keyword)
	close(entry.ready)

	// An all-failed fan-out is not worth remembering; dropping it lets
	// the next mount retry instead of serving an empty series until
	// restart
	if len(entry.points) == 0 {
		s.mu.Lock()
		if s.entries[keyword] == entry {
			delete(s.entries, keyword)
		}
		s.mu.Unlock()
	}

	return entry.points
}

// fetchWeek issues the 7 one-day-window requests concurrently. Completion
// order is irrelevant; ordering is imposed only by the final sort.
func (s *Service) fetchWeek(ctx context.Context, keyword string) []TrendPoint {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		points []TrendPoint
	)

	for i := 1; i <= 7; i++ {
		wg.Add(1)
		go func(daysBack int) {
			defer wg.Done()

			start := FormatQueryDate(s.now().AddDate(0, 0, -daysBack))
			end := FormatQueryDate(s.now().AddDate(0, 0, -daysBack+1))

			point, err := s.fetcher.HowsItTrending(ctx, keyword, start, end)
			if err != nil {
				s.log.Warn().
					Err(err).
					Str("keyword", keyword).
					Str("start", start).
					Msg("Dropping failed trend window")
				return
			}

			mu.Lock()
			points = append(points, point)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	sort.SliceStable(points, func(i, j int) bool {
		ti, iok := parsePeriodDate(points[i].TargetPeriodStartDate)
		tj, jok := parsePeriodDate(points[j].TargetPeriodStartDate)
		if iok && jok {
			return ti.Before(tj)
		}
		return points[i].TargetPeriodStartDate < points[j].TargetPeriodStartDate
	})

	s.log.Debug().Str("keyword", keyword).Int("points", len(points)).Msg("Weekly trend assembled")
	return points
}
