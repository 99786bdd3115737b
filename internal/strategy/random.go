package strategy

import (
	"math/rand"
	"time"

	"github.com/papertrader/simbot/internal/types"
)

// Random is a probabilistic hold/buy/sell policy. A flat book buys 20% of
// the time, an open position sells 15% of the time, everything else is a
// hold. BUY is only ever proposed when flat and SELL only when holding.
type Random struct {
	buyProb  float64
	sellProb float64
	rng      *rand.Rand
}

// NewRandom creates the policy. A nil rng is seeded from the clock.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{
		buyProb:  0.20,
		sellProb: 0.15,
		rng:      rng,
	}
}

// Decide returns the next action for the given holding.
func (r *Random) Decide(sharesHeld int) types.Action {
	if sharesHeld == 0 {
		if r.rng.Float64() < r.buyProb {
			return types.ActionBuy
		}
		return types.ActionHold
	}
	if r.rng.Float64() < r.sellProb {
		return types.ActionSell
	}
	return types.ActionHold
}
