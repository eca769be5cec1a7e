package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"driverdash/internal/cache"
	"driverdash/internal/core"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 14, 30, 0, 0, time.UTC) }
}

type countingCache struct {
	cache.Cache[[]core.DailyRecord]
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(key string, v []core.DailyRecord) {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	c.Cache.Set(key, v)
}

func TestServicePastMonths(t *testing.T) {
	svc := NewService(WithClock(fixedClock(2026, time.October, 16)))
	months := svc.PastMonths(context.Background(), "driver001")
	if len(months) != PastMonthsShown {
		t.Fatalf("expected %d months, got %d", PastMonthsShown, len(months))
	}
	wantLabels := []string{"July 2026", "August 2026", "September 2026"}
	for i, m := range months {
		if m.Label != wantLabels[i] {
			t.Fatalf("month %d: got %s, want %s", i, m.Label, wantLabels[i])
		}
		if m.TotalPickups <= 0 || !m.TotalEarnings.IsPositive() {
			t.Fatalf("month %d has no activity: %+v", i, m)
		}
	}
}

func TestServiceCurrentPeriodRestrictsToMonth(t *testing.T) {
	svc := NewService(WithClock(fixedClock(2026, time.October, 16)))
	ctx := context.Background()

	sum, err := svc.CurrentPeriod(ctx, "driver002", core.NewDate(2026, 9, 1), core.NewDate(2026, 10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Records) != 5 {
		t.Fatalf("expected 5 October records, got %d", len(sum.Records))
	}
	if !sum.Records[0].Date.Equal(core.NewDate(2026, 10, 1)) {
		t.Fatalf("first record %s", sum.Records[0].Date)
	}

	_, err = svc.CurrentPeriod(ctx, "driver002", core.NewDate(2026, 9, 1), core.NewDate(2026, 9, 30))
	if !errors.Is(err, core.ErrEmptyRange) {
		t.Fatalf("expected ErrEmptyRange for previous month, got %v", err)
	}
	_, err = svc.CurrentPeriod(ctx, "driver002", core.NewDate(2026, 10, 10), core.NewDate(2026, 10, 9))
	if !errors.Is(err, core.ErrEmptyRange) {
		t.Fatalf("expected ErrEmptyRange for inverted range, got %v", err)
	}
}

func TestServiceClampToCurrentMonth(t *testing.T) {
	svc := NewService(WithClock(fixedClock(2026, time.October, 16)))
	cases := []struct {
		in, want core.Date
	}{
		{core.NewDate(2026, 9, 30), core.NewDate(2026, 10, 1)},
		{core.NewDate(2026, 10, 20), core.NewDate(2026, 10, 16)},
		{core.NewDate(2026, 10, 7), core.NewDate(2026, 10, 7)},
	}
	for _, tc := range cases {
		if got := svc.ClampToCurrentMonth(tc.in); !got.Equal(tc.want) {
			t.Fatalf("clamp(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestServiceSeriesCache(t *testing.T) {
	c := &countingCache{Cache: cache.NewLRUCache[[]core.DailyRecord](8, time.Hour)}
	svc := NewService(WithClock(fixedClock(2026, time.October, 16)), WithSeriesCache(c))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Series(ctx, "driver001")
		}()
	}
	wg.Wait()
	svc.Series(ctx, "driver001")

	if c.sets < 1 || c.sets > 8 {
		t.Fatalf("unexpected number of cache writes: %d", c.sets)
	}
	before := c.sets
	svc.Series(ctx, "driver001")
	if c.sets != before {
		t.Fatalf("expected cached series to be reused")
	}

	uncached := NewService(WithClock(fixedClock(2026, time.October, 16)))
	a, b := svc.Series(ctx, "driver001"), uncached.Series(ctx, "driver001")
	if len(a) != len(b) || !a[len(a)-1].TotalEarnings.Equal(b[len(b)-1].TotalEarnings) {
		t.Fatalf("cached series differs from generated series")
	}
}
