package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/papertrader/simbot/internal/types"
)

// RedisPublisher publishes executed trades to a Redis stream so external
// consumers (dashboards, recorders) can follow the simulation live.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(host string, port int, stream string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", fmt.Sprintf("%s:%d", host, port)).Str("stream", stream).Msg("Connected to Redis")

	return &RedisPublisher{client: client, stream: stream}, nil
}

func (p *RedisPublisher) PublishTrade(ctx context.Context, ticker string, trade types.Trade) error {
	values := map[string]interface{}{
		"order_id":  trade.OrderID,
		"ticker":    ticker,
		"action":    string(trade.Action),
		"shares":    trade.Shares,
		"price":     trade.Price,
		"timestamp": trade.Timestamp.Format(time.RFC3339),
	}
	if trade.Profit != nil {
		values["profit"] = *trade.Profit
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish trade: %w", err)
	}

	log.Debug().
		Str("stream", p.stream).
		Str("order_id", trade.OrderID).
		Str("action", string(trade.Action)).
		Msg("Published trade event")

	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
