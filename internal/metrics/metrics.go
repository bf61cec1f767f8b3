// Package metrics turns a trade ledger into KPIs and chart series.
//
// Every function is pure and accepts an empty ledger: sums are zero, ratios
// are zero and no division is ever performed on an empty or zero denominator.
package metrics

import (
	"sort"

	"trading-journal/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the KPI row of the dashboard.
type Summary struct {
	Empty        bool            `json:"empty"`
	NetPnL       decimal.Decimal `json:"net_pnl"`
	TotalTrades  int             `json:"total_trades"`
	TotalLots    decimal.Decimal `json:"total_lots"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	BreakEven    int             `json:"break_even"`
	WinRate      float64         `json:"win_rate"` // percent
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	GrossLoss    decimal.Decimal `json:"gross_loss"` // magnitude
	ProfitFactor float64         `json:"profit_factor"`
}

// Summarize computes the headline KPIs.
// With no losing trades the profit factor is the gross profit itself, not infinity.
func Summarize(trades []models.Trade) Summary {
	s := Summary{
		Empty:       len(trades) == 0,
		NetPnL:      decimal.Zero,
		TotalLots:   decimal.Zero,
		GrossProfit: decimal.Zero,
		GrossLoss:   decimal.Zero,
		TotalTrades: len(trades),
	}
	if s.Empty {
		return s
	}

	for _, t := range trades {
		s.NetPnL = s.NetPnL.Add(t.PnL)
		s.TotalLots = s.TotalLots.Add(t.Quantity)
		switch t.PnL.Sign() {
		case 1:
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(t.PnL)
		case -1:
			s.Losses++
			s.GrossLoss = s.GrossLoss.Add(t.PnL.Abs())
		default:
			s.BreakEven++
		}
	}

	s.WinRate = decimal.NewFromInt(int64(s.Wins)).
		Div(decimal.NewFromInt(int64(s.TotalTrades))).
		Mul(hundred).
		InexactFloat64()

	if s.GrossLoss.IsPositive() {
		s.ProfitFactor = s.GrossProfit.Div(s.GrossLoss).InexactFloat64()
	} else {
		s.ProfitFactor = s.GrossProfit.InexactFloat64()
	}
	return s
}

// EquityPoint is one step of the equity curve.
type EquityPoint struct {
	TradeID    uint            `json:"trade_id"`
	PnL        decimal.Decimal `json:"pnl"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// EquityCurve is the running PnL total in ascending trade id order.
// Log order is the x-axis; entry dates are deliberately ignored.
func EquityCurve(trades []models.Trade) []EquityPoint {
	ordered := byID(trades)
	points := make([]EquityPoint, 0, len(ordered))
	running := decimal.Zero
	for _, t := range ordered {
		running = running.Add(t.PnL)
		points = append(points, EquityPoint{TradeID: t.ID, PnL: t.PnL, Cumulative: running})
	}
	return points
}

func byID(trades []models.Trade) []models.Trade {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return ordered
}

// ChallengeProgress tracks a single evaluation account against its pass and breach levels.
type ChallengeProgress struct {
	InitialBalance   decimal.Decimal `json:"initial_balance"`
	TargetPayout     decimal.Decimal `json:"target_payout"`
	MaxDrawdownLimit decimal.Decimal `json:"max_drawdown_limit"`
	CurrentEquity    decimal.Decimal `json:"current_equity"`
	DistanceToPass   decimal.Decimal `json:"distance_to_pass"`
	ProgressFraction float64         `json:"progress_fraction"` // clamped to [0,1]
	DrawdownBuffer   decimal.Decimal `json:"drawdown_buffer"`
	Passed           bool            `json:"passed"`
	Breached         bool            `json:"breached"`
}

// Challenge computes progress for acc given the net PnL of its trades.
func Challenge(acc models.Account, netPnL decimal.Decimal) ChallengeProgress {
	equity := acc.InitialBalance.Add(netPnL)
	p := ChallengeProgress{
		InitialBalance:   acc.InitialBalance,
		TargetPayout:     acc.TargetPayout,
		MaxDrawdownLimit: acc.MaxDrawdownLimit,
		CurrentEquity:    equity,
		DistanceToPass:   acc.TargetPayout.Sub(equity),
		DrawdownBuffer:   equity.Sub(acc.MaxDrawdownLimit),
	}
	p.Passed = !p.DistanceToPass.IsPositive()
	p.Breached = p.DrawdownBuffer.IsNegative()

	targetGain := acc.TargetPayout.Sub(acc.InitialBalance)
	if !targetGain.IsZero() {
		progress := equity.Sub(acc.InitialBalance).Div(targetGain).InexactFloat64()
		p.ProgressFraction = clamp(progress, 0, 1)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
