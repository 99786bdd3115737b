package config

import "time"

const (
	DefaultTicker        = "AAPL"
	DefaultCheckInterval = 5 * time.Second
)

// Bot holds the per-bot options passed to the initialize call. Immutable once
// the engine stores it.
type Bot struct {
	Ticker        string
	CheckInterval time.Duration
}

// ParseBotOptions builds a Bot from an opaque option map. Missing or
// malformed keys fall back to defaults rather than failing: ticker defaults
// to AAPL, check_interval to 5 seconds. check_interval is a number of
// seconds and arrives as float64 from JSON bodies or as int from code.
func ParseBotOptions(opts map[string]any) Bot {
	b := Bot{
		Ticker:        DefaultTicker,
		CheckInterval: DefaultCheckInterval,
	}

	if v, ok := opts["ticker"].(string); ok && v != "" {
		b.Ticker = v
	}

	switch v := opts["check_interval"].(type) {
	case float64:
		if v > 0 {
			b.CheckInterval = time.Duration(v * float64(time.Second))
		}
	case int:
		if v > 0 {
			b.CheckInterval = time.Duration(v) * time.Second
		}
	}

	return b
}
