// Package engine owns the bot lifecycle and all mutable portfolio state.
// A single background goroutine drives ticks; readers take the same lock
// and never observe a partially updated snapshot.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/papertrader/simbot/internal/config"
	"github.com/papertrader/simbot/internal/executor"
	"github.com/papertrader/simbot/internal/history"
	"github.com/papertrader/simbot/internal/types"
)

var (
	ErrNotConfigured  = errors.New("bot not initialized")
	ErrAlreadyRunning = errors.New("bot already running")
	ErrNotRunning     = errors.New("bot not running")
)

const (
	initialValue = 10000.0
	initialPrice = 175.0

	stopTimeout    = 5 * time.Second
	publishTimeout = 2 * time.Second

	performanceCapacity = 1000
	tradeCapacity       = 10000

	defaultTradeLimit       = 50
	defaultPerformanceLimit = 200
)

// PriceSource produces the next simulated price from the current one.
type PriceSource interface {
	NextPrice(current float64) float64
}

// Policy chooses the next action for the given holding.
type Policy interface {
	Decide(sharesHeld int) types.Action
}

// TradePublisher receives executed trades, e.g. for an event stream.
// Implementations are called from the tick goroutine outside the state lock.
type TradePublisher interface {
	PublishTrade(ctx context.Context, ticker string, trade types.Trade) error
}

// Bot is the simulation engine. One Bot owns one tick loop at most; Start
// and Stop gate it, and every read goes through the RWMutex so the loop's
// read-modify-write sequence appears atomic to callers.
type Bot struct {
	mu sync.RWMutex

	cfg         *config.Bot // nil until Initialize
	portfolio   types.Portfolio
	state       types.BotState
	trades      *history.Log[types.Trade]
	performance *history.Log[types.PerformanceSample]

	prices    PriceSource
	policy    Policy
	exec      *executor.Executor
	publisher TradePublisher // may be nil

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a stopped, unconfigured bot holding the initial book:
// 10000 cash, no shares, price 175.0. publisher may be nil.
func New(prices PriceSource, policy Policy, exec *executor.Executor, publisher TradePublisher) *Bot {
	return &Bot{
		prices:    prices,
		policy:    policy,
		exec:      exec,
		publisher: publisher,
		portfolio: types.Portfolio{
			Cash:         initialValue,
			SharesHeld:   0,
			CurrentPrice: initialPrice,
		},
		state: types.BotState{
			Status:         types.StatusStopped,
			PortfolioValue: initialValue,
			Cash:           initialValue,
			LastAction:     types.ActionHold,
			MarketOpen:     true,
		},
		trades:      history.New[types.Trade](tradeCapacity),
		performance: history.New[types.PerformanceSample](performanceCapacity),
	}
}

// Initialize stores the bot options and marks the bot initialized. Missing
// options fall back to defaults, so it never fails. Calling it again
// overwrites the previous configuration.
func (b *Bot) Initialize(opts map[string]any) {
	cfg := config.ParseBotOptions(opts)

	b.mu.Lock()
	b.cfg = &cfg
	b.state.Status = types.StatusInitialized
	b.mu.Unlock()

	log.Info().
		Str("ticker", cfg.Ticker).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Bot initialized")
}

// Start spawns the tick loop. It fails with ErrAlreadyRunning if a loop is
// active and ErrNotConfigured if Initialize was never called; on success
// exactly one goroutine is running and Start returns immediately.
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyRunning
	}
	if b.cfg == nil {
		return ErrNotConfigured
	}

	b.running = true
	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})
	go b.loop(b.cfg.CheckInterval, b.stopCh, b.doneCh)

	log.Info().Str("ticker", b.cfg.Ticker).Msg("Bot started")
	return nil
}

// Stop signals the tick loop and waits up to stopTimeout for it to exit.
// The join is best-effort: even if the loop misses the deadline, status is
// forced to stopped and control returns to the caller.
func (b *Bot) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return ErrNotRunning
	}
	b.running = false
	close(b.stopCh)
	done := b.doneCh
	b.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopTimeout):
		log.Warn().Msg("Tick loop did not exit before deadline")
	}

	b.mu.Lock()
	b.state.Status = types.StatusStopped
	b.mu.Unlock()

	log.Info().Msg("Bot stopped")
	return nil
}

// State returns a copy of the current snapshot.
func (b *Bot) State() types.BotState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	state := b.state
	if state.CurrentPosition != nil {
		pos := *state.CurrentPosition
		state.CurrentPosition = &pos
	}
	if state.LastUpdate != nil {
		t := *state.LastUpdate
		state.LastUpdate = &t
	}
	return state
}

// Trades returns the most recent limit trade records in insertion order.
// limit <= 0 applies the default of 50.
func (b *Bot) Trades(limit int) []types.Trade {
	if limit <= 0 {
		limit = defaultTradeLimit
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trades.Tail(limit)
}

// Performance returns the most recent limit performance samples in
// insertion order. limit <= 0 applies the default of 200.
func (b *Bot) Performance(limit int) []types.PerformanceSample {
	if limit <= 0 {
		limit = defaultPerformanceLimit
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.performance.Tail(limit)
}

func (b *Bot) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	log.Info().Dur("interval", interval).Msg("Trading loop started")

	for {
		b.safeTick()

		select {
		case <-stop:
			log.Info().Msg("Trading loop exiting")
			return
		case <-time.After(interval):
		}
	}
}

// safeTick runs one tick and swallows panics: a failed tick is logged and
// skipped, never allowed to kill the loop.
func (b *Bot) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Tick failed, skipping")
		}
	}()
	b.tick()
}

// tick performs one full step: price update, decision, execution, snapshot
// refresh, history append, then publishes any executed trade outside the
// lock.
func (b *Bot) tick() {
	now := time.Now()
	trade, ticker := b.step(now)

	if trade != nil && b.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := b.publisher.PublishTrade(ctx, ticker, *trade); err != nil {
			log.Error().Err(err).Str("order_id", trade.OrderID).Msg("Failed to publish trade event")
		}
	}
}

// step runs the read-modify-write sequence under the write lock. The unlock
// is deferred so a panicking tick cannot wedge the lock.
func (b *Bot) step(now time.Time) (*types.Trade, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Status = types.StatusActive

	b.portfolio.CurrentPrice = b.prices.NextPrice(b.portfolio.CurrentPrice)
	action := b.policy.Decide(b.portfolio.SharesHeld)

	res := b.exec.Execute(action, &b.portfolio, b.state.PortfolioValue, now)
	b.state.LastAction = res.Action
	if res.Trade != nil {
		b.trades.Append(*res.Trade)
	}

	b.refreshLocked(now)
	return res.Trade, b.cfg.Ticker
}

// refreshLocked recomputes the derived snapshot from the book and appends a
// performance sample. Callers must hold the write lock.
func (b *Bot) refreshLocked(now time.Time) {
	positionValue := float64(b.portfolio.SharesHeld) * b.portfolio.CurrentPrice
	portfolioValue := b.portfolio.Cash + positionValue
	totalPL := portfolioValue - initialValue

	b.state.PortfolioValue = portfolioValue
	b.state.Cash = b.portfolio.Cash
	b.state.TotalPL = totalPL
	b.state.TotalPLPct = totalPL / initialValue * 100
	t := now
	b.state.LastUpdate = &t
	b.state.MarketOpen = true

	if b.portfolio.SharesHeld > 0 {
		// Entry is marked at the current price, so unrealized P&L reads
		// zero until the next price move. Kept from the simulated model.
		b.state.CurrentPosition = &types.Position{
			Qty:           b.portfolio.SharesHeld,
			AvgEntryPrice: b.portfolio.CurrentPrice,
			CurrentPrice:  b.portfolio.CurrentPrice,
			MarketValue:   positionValue,
			UnrealizedPL:  0,
		}
	} else {
		b.state.CurrentPosition = nil
	}

	b.performance.Append(types.PerformanceSample{
		Timestamp:      now,
		PortfolioValue: portfolioValue,
		Cash:           b.portfolio.Cash,
		PositionValue:  positionValue,
	})
}
