package executor

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/papertrader/simbot/internal/types"
)

// buyFraction is the share of available cash committed on a BUY.
const buyFraction = 0.95

// Result reports what an Execute call did. Trade is nil when nothing was
// executed, and Action is the action actually taken — a BUY that cannot
// afford a single share degrades to HOLD silently.
type Result struct {
	Trade  *types.Trade
	Action types.Action
}

// Executor applies trading decisions to the portfolio book. It never
// touches shared state itself; the engine serializes calls under its lock.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

// Execute applies action to the portfolio and builds the trade record.
//
// BUY is valid only when flat: it spends buyFraction of cash at the current
// price, whole shares only. SELL is valid only when holding: it liquidates
// the whole position and realizes profit as revenue minus the aggregate
// cash outlay since entry (lastPortfolioValue - cash). That basis is an
// approximation, not per-share cost accounting — when the price has moved
// between the entry mark and the sale it drifts from the true realized
// gain, and that behavior is kept as-is. Every other action/position
// combination is a no-op HOLD.
func (e *Executor) Execute(action types.Action, p *types.Portfolio, lastPortfolioValue float64, now time.Time) Result {
	switch {
	case action == types.ActionBuy && p.SharesHeld == 0:
		shares := int(p.Cash * buyFraction / p.CurrentPrice)
		if shares <= 0 {
			return Result{Action: types.ActionHold}
		}

		cost := float64(shares) * p.CurrentPrice
		p.Cash -= cost
		p.SharesHeld = shares

		trade := &types.Trade{
			Timestamp: now,
			Action:    types.ActionBuy,
			Shares:    shares,
			Price:     p.CurrentPrice,
			OrderID:   uuid.NewString(),
		}

		log.Info().
			Str("order_id", trade.OrderID).
			Int("shares", shares).
			Float64("price", p.CurrentPrice).
			Float64("cost", cost).
			Msg("Executed BUY")

		return Result{Trade: trade, Action: types.ActionBuy}

	case action == types.ActionSell && p.SharesHeld > 0:
		shares := p.SharesHeld
		revenue := float64(shares) * p.CurrentPrice
		profit := revenue - (lastPortfolioValue - p.Cash)

		p.Cash += revenue
		p.SharesHeld = 0

		trade := &types.Trade{
			Timestamp: now,
			Action:    types.ActionSell,
			Shares:    shares,
			Price:     p.CurrentPrice,
			OrderID:   uuid.NewString(),
			Profit:    &profit,
		}

		log.Info().
			Str("order_id", trade.OrderID).
			Int("shares", shares).
			Float64("price", p.CurrentPrice).
			Float64("profit", profit).
			Msg("Executed SELL")

		return Result{Trade: trade, Action: types.ActionSell}

	default:
		return Result{Action: types.ActionHold}
	}
}
