package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// SummarizeMonthly groups a series by calendar month, in chronological order.
func SummarizeMonthly(series []DailyRecord) []MonthlySummary {
	var out []MonthlySummary
	index := map[YearMonth]int{}
	for _, rec := range series {
		ym := rec.Date.YearMonth()
		i, ok := index[ym]
		if !ok {
			i = len(out)
			index[ym] = i
			out = append(out, MonthlySummary{YearMonth: ym, Label: ym.Label(), TotalEarnings: decimal.Zero})
		}
		out[i].TotalPickups += rec.TotalPickups
		out[i].TotalEarnings = out[i].TotalEarnings.Add(rec.TotalEarnings)
	}
	slices.SortFunc(out, func(a, b MonthlySummary) int {
		switch {
		case a.YearMonth.Before(b.YearMonth):
			return -1
		case b.YearMonth.Before(a.YearMonth):
			return 1
		}
		return 0
	})
	return out
}

// CompletedMonths returns the last n summaries strictly before the month of
// today. When n <= 0 every completed month is returned.
func CompletedMonths(summaries []MonthlySummary, today Date, n int) []MonthlySummary {
	current := today.YearMonth()
	var completed []MonthlySummary
	for _, s := range summaries {
		if s.YearMonth.Before(current) {
			completed = append(completed, s)
		}
	}
	if n > 0 && len(completed) > n {
		completed = completed[len(completed)-n:]
	}
	return completed
}

// MonthRecords returns the records that fall in ym.
func MonthRecords(series []DailyRecord, ym YearMonth) []DailyRecord {
	var out []DailyRecord
	for _, rec := range series {
		if rec.Date.YearMonth() == ym {
			out = append(out, rec)
		}
	}
	return out
}

// FilterRange returns the records with start <= date <= end.
func FilterRange(series []DailyRecord, start, end Date) []DailyRecord {
	var out []DailyRecord
	for _, rec := range series {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FilterAndSummarize computes the metrics of the records within [start, end].
// It returns ErrEmptyRange when the range is inverted or selects no record.
func FilterAndSummarize(series []DailyRecord, start, end Date) (PeriodSummary, error) {
	if start.After(end) {
		return PeriodSummary{}, ErrEmptyRange
	}
	records := FilterRange(series, start, end)
	if len(records) == 0 {
		return PeriodSummary{}, ErrEmptyRange
	}

	sum := PeriodSummary{
		Start:         start,
		End:           end,
		Records:       records,
		TotalEarnings: decimal.Zero,
	}
	tierPickups := make([]int, len(Tiers))
	tierEarnings := make([]decimal.Decimal, len(Tiers))
	for i := range tierEarnings {
		tierEarnings[i] = decimal.Zero
	}
	for _, rec := range records {
		sum.TotalPickups += rec.TotalPickups
		sum.TotalEarnings = sum.TotalEarnings.Add(rec.TotalEarnings)
		for i, tier := range Tiers {
			tierPickups[i] += rec.Pickups(tier)
			tierEarnings[i] = tierEarnings[i].Add(rec.Earnings(tier))
		}
	}

	sum.AvgDailyPickups = float64(sum.TotalPickups) / float64(len(records))
	sum.AvgEarningPerPickup = perPickup(sum.TotalEarnings, sum.TotalPickups)
	for i, tier := range Tiers {
		sum.Breakdown = append(sum.Breakdown, SizeBreakdown{
			Tier:         tier,
			Pickups:      tierPickups[i],
			Earnings:     tierEarnings[i],
			AvgPerPickup: perPickup(tierEarnings[i], tierPickups[i]),
		})
	}
	return sum, nil
}

// perPickup divides earnings by pickups, yielding zero when there are none.
func perPickup(earnings decimal.Decimal, pickups int) decimal.Decimal {
	if pickups == 0 {
		return decimal.Zero
	}
	return earnings.Div(decimal.NewFromInt(int64(pickups)))
}
