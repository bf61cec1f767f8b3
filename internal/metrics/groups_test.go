package metrics

import (
	"testing"
	"time"

	"trading-journal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func binTotal(b Bin) int { return b.Win + b.Loss + b.BreakEven }

func values(groups []Group) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = g.Value.InexactFloat64()
	}
	return out
}

func TestPnLByWeekday_WeekendOnly(t *testing.T) {
	saturday := trade(1, "40")
	saturday.EntryDate = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	sunday := trade(2, "-15")
	sunday.EntryDate = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	days := PnLByWeekday([]models.Trade{saturday, sunday})

	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, keys(days))
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, values(days))
}

func TestPnLByWeekday_FillsMissingDays(t *testing.T) {
	mon := trade(1, "10")
	mon2 := trade(2, "5")
	wed := trade(3, "-7")
	wed.EntryDate = monday.AddDate(0, 0, 2)
	sat := trade(4, "100")
	sat.EntryDate = monday.AddDate(0, 0, 5)

	days := PnLByWeekday([]models.Trade{mon, mon2, wed, sat})

	assert.Equal(t, []float64{15, 0, -7, 0, 0}, values(days))
}

func TestPnLBySetup_SortedDescending(t *testing.T) {
	a := trade(1, "50")
	a.Setup = "BO strat (BR)"
	b := trade(2, "-30")
	b.Setup = "CSO strat"
	c := trade(3, "120")
	c.Setup = "PA strat"
	d := trade(4, "25")
	d.Setup = "BO strat (BR)"

	setups := PnLBySetup([]models.Trade{a, b, c, d})

	assert.Equal(t, []string{"PA strat", "BO strat (BR)", "CSO strat"}, keys(setups))
	assert.Equal(t, []float64{120, 75, -30}, values(setups))
}

func TestAvgPnLByProperSL(t *testing.T) {
	withSL := trade(1, "30")
	withSL2 := trade(2, "-10")
	noSL := trade(3, "-90")
	noSL.ProperSL = models.No

	groups := AvgPnLByProperSL([]models.Trade{withSL, withSL2, noSL})

	assert.Equal(t, []string{"No", "Yes"}, keys(groups))
	assert.Equal(t, []float64{-90, 10}, values(groups))
}

func TestSumGroups(t *testing.T) {
	broke := trade(1, "-40")
	broke.RulesFollowed = models.No
	broke.Trend = "Ranging"
	broke.Session = "NYC"
	kept := trade(2, "60")
	kept2 := trade(3, "15")
	kept2.Session = "Asian"

	trades := []models.Trade{broke, kept, kept2}

	rules := PnLByRulesFollowed(trades)
	assert.Equal(t, []string{"No", "Yes"}, keys(rules))
	assert.Equal(t, []float64{-40, 75}, values(rules))

	trends := PnLByTrend(trades)
	assert.Equal(t, []string{"Ranging", "UP"}, keys(trends))
	assert.Equal(t, []float64{-40, 75}, values(trends))

	sessions := PnLBySession(trades)
	assert.Equal(t, []string{"Asian", "London", "NYC"}, keys(sessions))
	assert.Equal(t, []float64{15, 60, -40}, values(sessions))
}

func TestPnLByWeekday_NonUTCLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Monday midnight UTC reads as Sunday evening in New York.
	monday := trade(1, "100")
	monday.EntryDate = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC).In(newYork)
	require.Equal(t, time.Sunday, monday.EntryDate.Weekday())

	days := PnLByWeekday([]models.Trade{monday})

	assert.Equal(t, []float64{100, 0, 0, 0, 0}, values(days))
}

func TestGroups_Empty(t *testing.T) {
	assert.Empty(t, PnLBySetup(nil))
	assert.Empty(t, AvgPnLByProperSL(nil))
	assert.Len(t, PnLByWeekday(nil), 5)
}

func TestHistogram(t *testing.T) {
	trades := []models.Trade{trade(1, "-100"), trade(2, "0"), trade(3, "50"), trade(4, "100")}

	bins := Histogram(trades, 4)

	require.Len(t, bins, 4)
	assert.Equal(t, -100.0, bins[0].Lower)
	assert.Equal(t, 100.0, bins[3].Upper)
	total := 0
	for _, b := range bins {
		total += binTotal(b)
	}
	assert.Equal(t, len(trades), total)
	assert.Equal(t, 1, bins[0].Loss)
	assert.Equal(t, 1, bins[2].BreakEven)
	assert.Equal(t, 2, bins[3].Win, "maximum lands in the last bin")
	assert.Zero(t, binTotal(bins[1]))
}

func TestHistogram_Degenerate(t *testing.T) {
	assert.Empty(t, Histogram(nil, 20))

	bins := Histogram([]models.Trade{trade(1, "5"), trade(2, "5")}, 20)
	require.Len(t, bins, 1)
	assert.Equal(t, 2, bins[0].Win)
}
