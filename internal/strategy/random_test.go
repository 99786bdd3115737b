package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/simbot/internal/types"
)

func TestFlatBookNeverSells(t *testing.T) {
	policy := NewRandom(rand.New(rand.NewSource(1)))

	for i := 0; i < 10000; i++ {
		action := policy.Decide(0)
		require.NotEqual(t, types.ActionSell, action)
	}
}

func TestOpenPositionNeverBuys(t *testing.T) {
	policy := NewRandom(rand.New(rand.NewSource(2)))

	for i := 0; i < 10000; i++ {
		action := policy.Decide(10)
		require.NotEqual(t, types.ActionBuy, action)
	}
}

func TestBuyFrequency(t *testing.T) {
	policy := NewRandom(rand.New(rand.NewSource(3)))

	buys := 0
	const draws = 20000
	for i := 0; i < draws; i++ {
		if policy.Decide(0) == types.ActionBuy {
			buys++
		}
	}

	assert.InDelta(t, 0.20, float64(buys)/draws, 0.02)
}

func TestSellFrequency(t *testing.T) {
	policy := NewRandom(rand.New(rand.NewSource(4)))

	sells := 0
	const draws = 20000
	for i := 0; i < draws; i++ {
		if policy.Decide(5) == types.ActionSell {
			sells++
		}
	}

	assert.InDelta(t, 0.15, float64(sells)/draws, 0.02)
}
