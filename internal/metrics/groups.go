package metrics

import (
	"sort"
	"time"

	"trading-journal/internal/models"

	"github.com/shopspring/decimal"
)

// Group is one bar of a grouped aggregate.
type Group struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Weekdays is the fixed x-axis of the weekday view.
var Weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

type accumulator struct {
	sums   map[string]decimal.Decimal
	counts map[string]int64
}

func accumulate(trades []models.Trade, key func(models.Trade) string) accumulator {
	acc := accumulator{sums: map[string]decimal.Decimal{}, counts: map[string]int64{}}
	for _, t := range trades {
		k := key(t)
		acc.sums[k] = acc.sums[k].Add(t.PnL)
		acc.counts[k]++
	}
	return acc
}

func (a accumulator) groups(value func(key string) decimal.Decimal) []Group {
	out := make([]Group, 0, len(a.sums))
	for k := range a.sums {
		out = append(out, Group{Key: k, Value: value(k)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (a accumulator) sum() []Group {
	return a.groups(func(k string) decimal.Decimal { return a.sums[k] })
}

func (a accumulator) mean() []Group {
	return a.groups(func(k string) decimal.Decimal {
		return a.sums[k].Div(decimal.NewFromInt(a.counts[k]))
	})
}

// PnLByRulesFollowed sums PnL for trades that kept or broke the plan.
func PnLByRulesFollowed(trades []models.Trade) []Group {
	return accumulate(trades, func(t models.Trade) string { return t.RulesFollowed }).sum()
}

// AvgPnLByProperSL averages PnL by whether a proper stop was in place.
func AvgPnLByProperSL(trades []models.Trade) []Group {
	return accumulate(trades, func(t models.Trade) string { return t.ProperSL }).mean()
}

// PnLBySetup sums PnL per setup, best setup first.
func PnLBySetup(trades []models.Trade) []Group {
	out := accumulate(trades, func(t models.Trade) string { return t.Setup }).sum()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.GreaterThan(out[j].Value) })
	return out
}

// PnLByTrend sums PnL per trend context.
func PnLByTrend(trades []models.Trade) []Group {
	return accumulate(trades, func(t models.Trade) string { return t.Trend }).sum()
}

// PnLBySession sums PnL per market session.
func PnLBySession(trades []models.Trade) []Group {
	return accumulate(trades, func(t models.Trade) string { return t.Session }).sum()
}

// PnLByWeekday sums PnL for Monday through Friday, in that order.
// Entry dates are calendar days stored as UTC midnight, so the weekday is read in UTC
// whatever location the driver hands back. Days without trades report zero; weekend
// trades are left out of this view.
func PnLByWeekday(trades []models.Trade) []Group {
	sums := accumulate(trades, func(t models.Trade) string { return t.EntryDate.UTC().Weekday().String() }).sums
	out := make([]Group, 0, len(Weekdays))
	for _, day := range Weekdays {
		v, ok := sums[day.String()]
		if !ok {
			v = decimal.Zero
		}
		out = append(out, Group{Key: day.String(), Value: v})
	}
	return out
}
