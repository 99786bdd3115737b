package types

import "time"

// Action is a trading decision produced by the policy.
type Action string

const (
	ActionHold Action = "HOLD"
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Status is the bot lifecycle state.
type Status string

const (
	StatusStopped     Status = "stopped"
	StatusInitialized Status = "initialized"
	StatusActive      Status = "active"
)

// Trade is an executed simulated order. Records are immutable once appended
// to the trade history. Profit is set only on SELL.
type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Shares    int       `json:"shares"`
	Price     float64   `json:"price"`
	OrderID   string    `json:"order_id"`
	Profit    *float64  `json:"profit,omitempty"`
}

// PerformanceSample is a point-in-time valuation of the portfolio.
type PerformanceSample struct {
	Timestamp      time.Time `json:"timestamp"`
	PortfolioValue float64   `json:"portfolio_value"`
	Cash           float64   `json:"cash"`
	PositionValue  float64   `json:"position_value"`
}

// Portfolio is the engine's mutable cash/shares book. The tick loop is its
// only writer.
type Portfolio struct {
	Cash         float64
	SharesHeld   int
	CurrentPrice float64
}

// Position describes an open holding, present in the snapshot only while
// shares are held.
type Position struct {
	Qty           int     `json:"qty"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPL  float64 `json:"unrealized_pl"`
}

// BotState is the derived snapshot exposed to readers.
type BotState struct {
	Status          Status     `json:"status"`
	CurrentPosition *Position  `json:"current_position"`
	PortfolioValue  float64    `json:"portfolio_value"`
	Cash            float64    `json:"cash"`
	TotalPL         float64    `json:"total_pl"`
	TotalPLPct      float64    `json:"total_pl_pct"`
	LastUpdate      *time.Time `json:"last_update"`
	LastAction      Action     `json:"last_action"`
	MarketOpen      bool       `json:"market_open"`
}
