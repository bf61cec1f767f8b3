package metrics

import (
	"testing"
	"time"

	"trading-journal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// monday is 2024-03-04.
var monday = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func trade(id uint, pnl string) models.Trade {
	p := dec(pnl)
	return models.Trade{
		ID:            id,
		AccountID:     1,
		PnL:           p,
		Quantity:      dec("0.1"),
		Status:        models.StatusForPnL(p),
		EntryDate:     monday,
		RulesFollowed: models.Yes,
		ProperSL:      models.Yes,
		Setup:         "PA strat",
		Trend:         "UP",
		Session:       "London",
	}
}

func challengeAccount() models.Account {
	return models.Account{
		ID:               1,
		Name:             "A",
		InitialBalance:   dec("5000"),
		TargetPayout:     dec("5500"),
		MaxDrawdownLimit: dec("4500"),
	}
}

func TestChallengeScenario(t *testing.T) {
	trades := []models.Trade{trade(1, "200"), trade(2, "150"), trade(3, "-50")}
	acc := challengeAccount()

	d := Build(trades, &acc)

	assert.False(t, d.Summary.Empty)
	assert.True(t, d.Summary.NetPnL.Equal(dec("300")))
	assert.Equal(t, 3, d.Summary.TotalTrades)
	assert.True(t, d.Summary.TotalLots.Equal(dec("0.3")))
	assert.InDelta(t, 66.7, d.Summary.WinRate, 0.05)
	assert.True(t, d.Summary.GrossProfit.Equal(dec("350")))
	assert.True(t, d.Summary.GrossLoss.Equal(dec("50")))
	assert.InDelta(t, 7.0, d.Summary.ProfitFactor, 1e-9)

	require.NotNil(t, d.Challenge)
	assert.True(t, d.Challenge.CurrentEquity.Equal(dec("5300")))
	assert.True(t, d.Challenge.DistanceToPass.Equal(dec("200")))
	assert.InDelta(t, 0.6, d.Challenge.ProgressFraction, 1e-9)
	assert.True(t, d.Challenge.DrawdownBuffer.Equal(dec("800")))
	assert.False(t, d.Challenge.Passed)
	assert.False(t, d.Challenge.Breached)
}

func TestSummarize_Empty(t *testing.T) {
	for _, trades := range [][]models.Trade{nil, {}} {
		s := Summarize(trades)
		assert.True(t, s.Empty)
		assert.Zero(t, s.TotalTrades)
		assert.Zero(t, s.WinRate)
		assert.Zero(t, s.ProfitFactor)
		assert.True(t, s.NetPnL.IsZero())
		assert.True(t, s.GrossLoss.IsZero())
	}
}

func TestSummarize_ProfitFactorWithoutLosses(t *testing.T) {
	s := Summarize([]models.Trade{trade(1, "120.50"), trade(2, "0"), trade(3, "79.50")})

	assert.True(t, s.GrossLoss.IsZero())
	assert.Equal(t, 200.0, s.ProfitFactor, "falls back to gross profit")
	assert.Equal(t, 1, s.BreakEven)
	assert.InDelta(t, 66.666, s.WinRate, 0.001)
}

func TestSummarize_OnlyBreakEven(t *testing.T) {
	s := Summarize([]models.Trade{trade(1, "0"), trade(2, "0")})
	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.WinRate)
	assert.Equal(t, 2, s.BreakEven)
}

func TestSummarize_DecompositionIsExact(t *testing.T) {
	ledgers := [][]models.Trade{
		{trade(1, "0.1"), trade(2, "0.2"), trade(3, "-0.3")},
		{trade(1, "-12.34"), trade(2, "-0.01")},
		{trade(1, "1000000.01"), trade(2, "-999999.99"), trade(3, "0"), trade(4, "33.33")},
	}
	for _, ledger := range ledgers {
		s := Summarize(ledger)
		assert.True(t, s.GrossProfit.Sub(s.GrossLoss).Equal(s.NetPnL),
			"gross profit %s - gross loss %s != net %s", s.GrossProfit, s.GrossLoss, s.NetPnL)
	}
}

func TestEquityCurve_FollowsIDOrderNotDate(t *testing.T) {
	later := trade(1, "10")
	later.EntryDate = monday.AddDate(0, 0, 3)
	earlier := trade(2, "-4")
	earlier.EntryDate = monday
	third := trade(3, "6")

	// Input deliberately out of id order.
	curve := EquityCurve([]models.Trade{third, earlier, later})

	require.Len(t, curve, 3)
	assert.Equal(t, []uint{1, 2, 3}, []uint{curve[0].TradeID, curve[1].TradeID, curve[2].TradeID})
	assert.True(t, curve[0].Cumulative.Equal(dec("10")))
	assert.True(t, curve[1].Cumulative.Equal(dec("6")))
	assert.True(t, curve[2].Cumulative.Equal(dec("12")))
}

func TestChallenge(t *testing.T) {
	testCases := []struct {
		name             string
		acc              models.Account
		net              string
		expectedProgress float64
		passed           bool
		breached         bool
	}{
		{name: "Passed clamps to one", acc: challengeAccount(), net: "750", expectedProgress: 1, passed: true},
		{name: "Exactly on target", acc: challengeAccount(), net: "500", expectedProgress: 1, passed: true},
		{name: "Underwater clamps to zero", acc: challengeAccount(), net: "-200", expectedProgress: 0},
		{name: "Breached", acc: challengeAccount(), net: "-600", expectedProgress: 0, breached: true},
		{
			name:             "Target equals initial balance",
			acc:              models.Account{InitialBalance: dec("1000"), TargetPayout: dec("1000"), MaxDrawdownLimit: dec("900")},
			net:              "50",
			expectedProgress: 0,
			passed:           true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Challenge(tc.acc, dec(tc.net))
			assert.InDelta(t, tc.expectedProgress, p.ProgressFraction, 1e-9)
			assert.Equal(t, tc.passed, p.Passed)
			assert.Equal(t, tc.breached, p.Breached)
			assert.True(t, p.CurrentEquity.Equal(tc.acc.InitialBalance.Add(dec(tc.net))))
		})
	}
}

func TestBuild_EmptyIsNoDataState(t *testing.T) {
	acc := challengeAccount()
	d := Build(nil, &acc)

	assert.True(t, d.Summary.Empty)
	assert.Nil(t, d.Challenge)
	assert.Empty(t, d.Equity)
	assert.Empty(t, d.Weekdays)
	assert.NotNil(t, d.Setups)
}

func TestBuild_AllAccountsHasNoChallenge(t *testing.T) {
	d := Build([]models.Trade{trade(1, "5")}, nil)
	assert.Nil(t, d.Challenge)
	assert.Len(t, d.Equity, 1)
}
