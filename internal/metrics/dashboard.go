package metrics

import (
	"math"

	"trading-journal/internal/models"
)

// DefaultHistogramBins matches the PnL distribution chart.
const DefaultHistogramBins = 20

// Bin is one bucket of the PnL distribution, split by trade status.
type Bin struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Win       int     `json:"win"`
	Loss      int     `json:"loss"`
	BreakEven int     `json:"break_even"`
}

// Histogram buckets trades into equal-width PnL bins between the smallest and largest PnL.
// The last bin is closed so the maximum lands in it; identical PnLs share a single bin.
func Histogram(trades []models.Trade, bins int) []Bin {
	if len(trades) == 0 || bins <= 0 {
		return []Bin{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range trades {
		v := t.PnL.InexactFloat64()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		bins = 1
	}
	width := (hi - lo) / float64(bins)

	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, t := range trades {
		idx := 0
		if width > 0 {
			idx = int((t.PnL.InexactFloat64() - lo) / width)
		}
		if idx >= bins {
			idx = bins - 1
		}
		switch t.Status {
		case models.StatusWin:
			out[idx].Win++
		case models.StatusLoss:
			out[idx].Loss++
		default:
			out[idx].BreakEven++
		}
	}
	return out
}

// Dashboard is everything the analytics views render for one selection.
type Dashboard struct {
	Summary       Summary            `json:"summary"`
	Challenge     *ChallengeProgress `json:"challenge,omitempty"`
	Equity        []EquityPoint      `json:"equity"`
	Distribution  []Bin              `json:"distribution"`
	RulesFollowed []Group            `json:"rules_followed"`
	ProperSL      []Group            `json:"proper_sl"`
	Setups        []Group            `json:"setups"`
	Trends        []Group            `json:"trends"`
	Sessions      []Group            `json:"sessions"`
	Weekdays      []Group            `json:"weekdays"`
}

// Build assembles the dashboard. acc is nil for the all-accounts view.
// An empty ledger yields the no-data state: a zero summary and no series.
func Build(trades []models.Trade, acc *models.Account) Dashboard {
	d := Dashboard{
		Summary:       Summarize(trades),
		Equity:        []EquityPoint{},
		Distribution:  []Bin{},
		RulesFollowed: []Group{},
		ProperSL:      []Group{},
		Setups:        []Group{},
		Trends:        []Group{},
		Sessions:      []Group{},
		Weekdays:      []Group{},
	}
	if d.Summary.Empty {
		return d
	}

	if acc != nil {
		progress := Challenge(*acc, d.Summary.NetPnL)
		d.Challenge = &progress
	}
	d.Equity = EquityCurve(trades)
	d.Distribution = Histogram(trades, DefaultHistogramBins)
	d.RulesFollowed = PnLByRulesFollowed(trades)
	d.ProperSL = AvgPnLByProperSL(trades)
	d.Setups = PnLBySetup(trades)
	d.Trends = PnLByTrend(trades)
	d.Sessions = PnLBySession(trades)
	d.Weekdays = PnLByWeekday(trades)
	return d
}
