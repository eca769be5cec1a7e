package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func sameRecord(a, b DailyRecord) bool {
	return a.Date.Equal(b.Date) &&
		a.TotalPickups == b.TotalPickups &&
		a.SmallPickups == b.SmallPickups &&
		a.MediumPickups == b.MediumPickups &&
		a.LargePickups == b.LargePickups &&
		a.TotalEarnings.Equal(b.TotalEarnings) &&
		a.SmallEarnings.Equal(b.SmallEarnings) &&
		a.MediumEarnings.Equal(b.MediumEarnings) &&
		a.LargeEarnings.Equal(b.LargeEarnings)
}

func TestGenerateSeriesCoversWindow(t *testing.T) {
	cases := []Date{
		NewDate(2026, 10, 16),
		NewDate(2026, 1, 1),
		NewDate(2024, 2, 29),
		NewDate(2025, 12, 31),
	}
	for _, today := range cases {
		series := GenerateSeries("driver001", today)
		start := today.FirstOfMonth().AddDays(-90)
		if len(series) < 91 {
			t.Fatalf("%s: window has %d days, want at least 91", today, len(series))
		}
		if !series[0].Date.Equal(start) {
			t.Fatalf("%s: first date %s, want %s", today, series[0].Date, start)
		}
		if last := series[len(series)-1].Date; !last.Equal(today) {
			t.Fatalf("%s: last date %s, want %s", today, last, today)
		}
		for i := 1; i < len(series); i++ {
			if want := series[i-1].Date.AddDays(1); !series[i].Date.Equal(want) {
				t.Fatalf("%s: record %d has date %s, want %s", today, i, series[i].Date, want)
			}
		}
	}
}

func TestGenerateSeriesWindowLength(t *testing.T) {
	// 2026-07-03 .. 2026-10-16
	series := GenerateSeries("driver001", NewDate(2026, 10, 16))
	if len(series) != 106 {
		t.Fatalf("expected 106 records, got %d", len(series))
	}
}

func TestGenerateSeriesInvariants(t *testing.T) {
	for _, id := range []string{"driver001", "driver002", "driver003", "x"} {
		for _, rec := range GenerateSeries(id, NewDate(2026, 10, 16)) {
			if rec.SmallPickups+rec.MediumPickups+rec.LargePickups != rec.TotalPickups {
				t.Fatalf("%s %s: tier pickups do not sum to total: %+v", id, rec.Date, rec)
			}
			if rec.TotalPickups < minDailyPickups || rec.TotalPickups > maxDailyPickups {
				t.Fatalf("%s %s: total pickups %d out of range", id, rec.Date, rec.TotalPickups)
			}
			if rec.SmallPickups < 0 || rec.MediumPickups < 0 || rec.LargePickups < 0 {
				t.Fatalf("%s %s: negative pickups: %+v", id, rec.Date, rec)
			}
			if rec.SmallPickups > rec.TotalPickups/2 {
				t.Fatalf("%s %s: small pickups %d exceed half of %d", id, rec.Date, rec.SmallPickups, rec.TotalPickups)
			}
			for _, tier := range Tiers {
				earned := rec.Earnings(tier)
				if earned.IsNegative() {
					t.Fatalf("%s %s: negative %s earnings %s", id, rec.Date, tier, earned)
				}
				if earned.Exponent() < -2 {
					t.Fatalf("%s %s: %s earnings %s not rounded to cents", id, rec.Date, tier, earned)
				}
				n := decimal.NewFromInt(int64(rec.Pickups(tier)))
				lo := n.Mul(decimal.NewFromFloat(unitPrices[tier].min)).Sub(decimal.NewFromFloat(0.01))
				hi := n.Mul(decimal.NewFromFloat(unitPrices[tier].max)).Add(decimal.NewFromFloat(0.01))
				if earned.LessThan(lo) || earned.GreaterThan(hi) {
					t.Fatalf("%s %s: %s earnings %s outside [%s, %s]", id, rec.Date, tier, earned, lo, hi)
				}
			}
			tierSum := rec.SmallEarnings.Add(rec.MediumEarnings).Add(rec.LargeEarnings)
			if rec.TotalEarnings.Sub(tierSum).Abs().GreaterThan(decimal.NewFromFloat(0.02)) {
				t.Fatalf("%s %s: total %s drifts from tier sum %s", id, rec.Date, rec.TotalEarnings, tierSum)
			}
		}
	}
}

func TestGenerateSeriesDeterministic(t *testing.T) {
	today := NewDate(2026, 10, 16)
	a := GenerateSeries("driver001", today)
	b := GenerateSeries("driver001", today)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !sameRecord(a[i], b[i]) {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateSeriesStableAcrossWindows(t *testing.T) {
	early := GenerateSeries("driver002", NewDate(2026, 10, 16))
	late := GenerateSeries("driver002", NewDate(2026, 11, 2))

	byDate := map[Date]DailyRecord{}
	for _, rec := range late {
		byDate[rec.Date] = rec
	}
	overlap := 0
	for _, rec := range early {
		other, ok := byDate[rec.Date]
		if !ok {
			continue
		}
		overlap++
		if !sameRecord(rec, other) {
			t.Fatalf("record for %s changed between windows", rec.Date)
		}
	}
	if overlap == 0 {
		t.Fatalf("expected overlapping dates between windows")
	}
}

func TestGenerateSeriesDependsOnIdentity(t *testing.T) {
	today := NewDate(2026, 10, 16)
	a := GenerateSeries("driver001", today)
	b := GenerateSeries("driver002", today)
	for i := range a {
		if !sameRecord(a[i], b[i]) {
			return
		}
	}
	t.Fatalf("different identities produced identical series")
}
