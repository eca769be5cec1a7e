package http

import (
	"strconv"

	"github.com/shopspring/decimal"

	"driverdash/internal/core"
)

// monthCard is one "Past 3 Months Performance" card.
type monthCard struct {
	Label    string
	Pickups  string
	Earnings string
}

type tierCard struct {
	Name         string
	Pickups      int
	Earnings     string
	AvgPerPickup string
}

// periodView is the data of the period partial.
type periodView struct {
	Empty               bool
	Start               string
	End                 string
	TotalPickups        int
	TotalEarnings       string
	AvgDailyPickups     string
	AvgEarningPerPickup string
	Tiers               []tierCard
}

type loginView struct {
	Error           string
	UserID          string
	Return          string
	DemoCredentials []demoCredential
}

type demoCredential struct {
	ID     string
	Secret string
}

type dashboardView struct {
	DriverName string
	Months     []monthCard
	MinDate    string
	MaxDate    string
	Range      DateRange
	Period     periodView
}

func newMonthCards(months []core.MonthlySummary) []monthCard {
	cards := make([]monthCard, 0, len(months))
	for _, m := range months {
		cards = append(cards, monthCard{
			Label:    m.Label,
			Pickups:  strconv.Itoa(m.TotalPickups) + " pickups",
			Earnings: core.FormatCurrency(m.TotalEarnings) + " earned",
		})
	}
	return cards
}

func newPeriodView(dr DateRange, sum core.PeriodSummary, err error) periodView {
	v := periodView{Start: dr.Start.String(), End: dr.End.String()}
	if err != nil {
		v.Empty = true
		return v
	}
	v.TotalPickups = sum.TotalPickups
	v.TotalEarnings = core.FormatCurrency(sum.TotalEarnings)
	v.AvgDailyPickups = strconv.FormatFloat(sum.AvgDailyPickups, 'f', 1, 64)
	v.AvgEarningPerPickup = core.FormatCurrency(sum.AvgEarningPerPickup)
	for _, b := range sum.Breakdown {
		v.Tiers = append(v.Tiers, tierCard{
			Name:         b.Tier.String(),
			Pickups:      b.Pickups,
			Earnings:     core.FormatCurrency(b.Earnings),
			AvgPerPickup: core.FormatCurrency(b.AvgPerPickup),
		})
	}
	return v
}

// periodJSON feeds the charts.
// money marshals as a quoted amount with exactly two decimal places.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + decimal.Decimal(m).StringFixed(2) + `"`), nil
}

type periodJSON struct {
	Empty               bool        `json:"empty"`
	Start               core.Date   `json:"start"`
	End                 core.Date   `json:"end"`
	TotalPickups        int         `json:"total_pickups"`
	TotalEarnings       money       `json:"total_earnings"`
	AvgDailyPickups     float64     `json:"avg_daily_pickups"`
	AvgEarningPerPickup money       `json:"avg_earning_per_pickup"`
	Tiers               []tierJSON  `json:"tiers"`
	Daily               []dailyJSON `json:"daily"`
}

type tierJSON struct {
	Name         string `json:"name"`
	Pickups      int    `json:"pickups"`
	Earnings     money  `json:"earnings"`
	AvgPerPickup money  `json:"avg_per_pickup"`
}

type dailyJSON struct {
	Date     core.Date `json:"date"`
	Pickups  int       `json:"pickups"`
	Earnings money     `json:"earnings"`
}

type monthJSON struct {
	Month    string `json:"month"`
	Label    string `json:"label"`
	Pickups  int    `json:"pickups"`
	Earnings money  `json:"earnings"`
}

func newPeriodJSON(dr DateRange, sum core.PeriodSummary, err error) periodJSON {
	out := periodJSON{
		Start: dr.Start,
		End:   dr.End,
		Tiers: []tierJSON{},
		Daily: []dailyJSON{},
	}
	if err != nil {
		out.Empty = true
		return out
	}
	out.TotalPickups = sum.TotalPickups
	out.TotalEarnings = money(sum.TotalEarnings)
	out.AvgDailyPickups = sum.AvgDailyPickups
	out.AvgEarningPerPickup = money(sum.AvgEarningPerPickup)
	for _, b := range sum.Breakdown {
		out.Tiers = append(out.Tiers, tierJSON{
			Name:         b.Tier.String(),
			Pickups:      b.Pickups,
			Earnings:     money(b.Earnings),
			AvgPerPickup: money(b.AvgPerPickup),
		})
	}
	for _, rec := range sum.Records {
		out.Daily = append(out.Daily, dailyJSON{Date: rec.Date, Pickups: rec.TotalPickups, Earnings: money(rec.TotalEarnings)})
	}
	return out
}

func newMonthsJSON(months []core.MonthlySummary) []monthJSON {
	out := make([]monthJSON, 0, len(months))
	for _, m := range months {
		out = append(out, monthJSON{
			Month:    m.YearMonth.String(),
			Label:    m.Label,
			Pickups:  m.TotalPickups,
			Earnings: money(m.TotalEarnings),
		})
	}
	return out
}
