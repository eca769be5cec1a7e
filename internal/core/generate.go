package core

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const (
	// LookbackDays is how far before the first of the current month the window starts.
	LookbackDays = 90

	minDailyPickups = 8
	maxDailyPickups = 25
)

// priceBand is a half-open range [min, max) of unit prices.
type priceBand struct {
	min, max float64
}

func (b priceBand) draw(rng *rand.Rand) float64 {
	return b.min + rng.Float64()*(b.max-b.min)
}

// unitPrices is indexed by Tier.
var unitPrices = [...]priceBand{
	TierSmall:  {2.50, 4.00},
	TierMedium: {4.00, 6.50},
	TierLarge:  {6.50, 10.00},
}

// SeriesWindow returns the first and last day generated for today.
func SeriesWindow(today Date) (start, end Date) {
	return today.FirstOfMonth().AddDays(-LookbackDays), today
}

// GenerateSeries synthesizes one DailyRecord per day of the observation window
// ending at today. The output depends only on identity and today, and the
// record of a given date is the same whatever window it is generated in.
func GenerateSeries(identity string, today Date) []DailyRecord {
	seed := identitySeed(identity)
	start, end := SeriesWindow(today)

	series := make([]DailyRecord, 0, int(end.dayNumber()-start.dayNumber())+1)
	for day := start; !day.After(end); day = day.AddDays(1) {
		rng := rand.New(rand.NewPCG(seed, uint64(day.dayNumber())))
		series = append(series, synthesizeDay(rng, day))
	}
	return series
}

// identitySeed hashes an identity into a 64-bit seed (FNV-1a).
func identitySeed(identity string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identity))
	return h.Sum64()
}

func synthesizeDay(rng *rand.Rand, day Date) DailyRecord {
	base := minDailyPickups + rng.IntN(maxDailyPickups-minDailyPickups+1)
	small := rng.IntN(base/2 + 1)
	medium := rng.IntN((base-small)/2 + 1)
	large := max(0, base-small-medium)
	counts := [...]int{TierSmall: small, TierMedium: medium, TierLarge: large}

	rec := DailyRecord{Date: day}
	var total float64
	for _, tier := range Tiers {
		amount := float64(counts[tier]) * unitPrices[tier].draw(rng)
		total += amount
		rec.setTier(tier, counts[tier], roundCurrency(amount))
	}
	rec.TotalPickups = small + medium + large
	rec.TotalEarnings = roundCurrency(total)
	return rec
}

func roundCurrency(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
