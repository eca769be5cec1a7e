package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"driverdash/internal/cache"
	"driverdash/internal/core"
)

// PastMonthsShown is how many completed months the dashboard lists.
const PastMonthsShown = 3

// Service builds the dashboard views for a driver. It regenerates the series
// from the identity on each call, optionally memoized per identity and day.
type Service struct {
	now    func() time.Time
	series cache.Cache[[]core.DailyRecord]
	group  singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSeriesCache memoizes generated series. A nil cache disables memoization.
func WithSeriesCache(c cache.Cache[[]core.DailyRecord]) Option {
	return func(s *Service) { s.series = c }
}

func NewService(opts ...Option) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current civil date.
func (s *Service) Today() core.Date {
	return core.DateOf(s.now())
}

// Series returns the full generated series for identity as of today.
// Callers must not modify the returned slice.
func (s *Service) Series(ctx context.Context, identity string) []core.DailyRecord {
	today := s.Today()
	if s.series == nil {
		return core.GenerateSeries(identity, today)
	}

	key := identity + "|" + today.String()
	if recs, ok := s.series.Get(key); ok {
		return recs
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		recs := core.GenerateSeries(identity, today)
		s.series.Set(key, recs)
		return recs, nil
	})
	return v.([]core.DailyRecord)
}

// PastMonths returns the last completed months for identity, oldest first.
func (s *Service) PastMonths(ctx context.Context, identity string) []core.MonthlySummary {
	series := s.Series(ctx, identity)
	return core.CompletedMonths(core.SummarizeMonthly(series), s.Today(), PastMonthsShown)
}

// CurrentMonthBounds returns the selectable range of the current month.
func (s *Service) CurrentMonthBounds() (first, last core.Date) {
	today := s.Today()
	return today.FirstOfMonth(), today
}

// ClampToCurrentMonth pins d into [first of month, today].
func (s *Service) ClampToCurrentMonth(d core.Date) core.Date {
	first, last := s.CurrentMonthBounds()
	switch {
	case d.Before(first):
		return first
	case d.After(last):
		return last
	}
	return d
}

// CurrentPeriod summarizes the current month records within [start, end].
// It returns core.ErrEmptyRange when nothing matches.
func (s *Service) CurrentPeriod(ctx context.Context, identity string, start, end core.Date) (core.PeriodSummary, error) {
	series := s.Series(ctx, identity)
	month := core.MonthRecords(series, s.Today().YearMonth())
	return core.FilterAndSummarize(month, start, end)
}
