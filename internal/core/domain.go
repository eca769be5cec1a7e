package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TierSmall Tier = iota
	TierMedium
	TierLarge
)

const dateLayout = "2006-01-02"

type (
	// Tier is a package size classification.
	Tier int

	// Date is a civil calendar date, normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}

	// DailyRecord holds one day of pickups and earnings.
	DailyRecord struct {
		Date           Date
		TotalPickups   int
		TotalEarnings  decimal.Decimal
		SmallPickups   int
		MediumPickups  int
		LargePickups   int
		SmallEarnings  decimal.Decimal
		MediumEarnings decimal.Decimal
		LargeEarnings  decimal.Decimal
	}

	// MonthlySummary aggregates the records of one calendar month.
	MonthlySummary struct {
		YearMonth     YearMonth
		Label         string
		TotalPickups  int
		TotalEarnings decimal.Decimal
	}

	// SizeBreakdown aggregates one tier over a date range.
	SizeBreakdown struct {
		Tier         Tier
		Pickups      int
		Earnings     decimal.Decimal
		AvgPerPickup decimal.Decimal
	}

	// PeriodSummary is the metrics view of a filtered date range.
	PeriodSummary struct {
		Start               Date
		End                 Date
		Records             []DailyRecord
		TotalPickups        int
		TotalEarnings       decimal.Decimal
		AvgDailyPickups     float64
		AvgEarningPerPickup decimal.Decimal
		// Breakdown holds one entry per tier, indexed in Tiers order.
		Breakdown []SizeBreakdown
	}
)

// Tiers lists every tier in display order.
var Tiers = [...]Tier{TierSmall, TierMedium, TierLarge}

var (
	// ErrEmptyRange signals that a date range selected no records.
	ErrEmptyRange  = errors.New("no data for range")
	ErrInvalidDate = errors.New("invalid date")
)

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "Small"
	case TierMedium:
		return "Medium"
	case TierLarge:
		return "Large"
	default:
		return "Unknown"
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// YearMonth returns the month containing d.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// dayNumber counts days since the Unix epoch.
func (d Date) dayNumber() int64 {
	return d.Unix() / 86400
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Label renders the month as "January 2026".
func (ym YearMonth) Label() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Pickups returns the pickup count of a tier.
func (r DailyRecord) Pickups(t Tier) int {
	switch t {
	case TierSmall:
		return r.SmallPickups
	case TierMedium:
		return r.MediumPickups
	case TierLarge:
		return r.LargePickups
	}
	return 0
}

// Earnings returns the earnings of a tier.
func (r DailyRecord) Earnings(t Tier) decimal.Decimal {
	switch t {
	case TierSmall:
		return r.SmallEarnings
	case TierMedium:
		return r.MediumEarnings
	case TierLarge:
		return r.LargeEarnings
	}
	return decimal.Zero
}

func (r *DailyRecord) setTier(t Tier, pickups int, earnings decimal.Decimal) {
	switch t {
	case TierSmall:
		r.SmallPickups, r.SmallEarnings = pickups, earnings
	case TierMedium:
		r.MediumPickups, r.MediumEarnings = pickups, earnings
	case TierLarge:
		r.LargePickups, r.LargeEarnings = pickups, earnings
	}
}
