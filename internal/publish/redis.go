// Package publish pushes accepted alerts to Redis so downstream consumers
// (dashboards, bots) can pick them up without touching the HTTP surface.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"trading-monitor/internal/model"
)

const (
	// Stream trimming: generous for a per-asset alert firehose.
	alertStreamMaxLen = 5000
	latestTTL         = 30 * time.Minute
)

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Redis publishes alerts via XADD, SET latest and PUBLISH in one pipeline
// per event.
type Redis struct {
	client *goredis.Client
	log    zerolog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig, log zerolog.Logger) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("redis publisher connected")
	return &Redis{client: client, log: log.With().Str("comp", "publish").Logger()}, nil
}

func (r *Redis) Name() string { return "redis" }

// Send writes one alert: XADD to the per-asset stream, SET of the latest
// alert key and PUBLISH on the fan-out channel.
func (r *Redis) Send(ctx context.Context, ev model.AlertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis publish: marshal: %w", err)
	}
	data := string(payload)

	streamKey := "alerts:" + ev.Asset
	latestKey := "alerts:latest:" + ev.Asset
	pubsubCh := "pub:alerts:" + ev.Asset

	pipe := r.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: streamKey,
		MaxLen: alertStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": data},
	})
	pipe.Set(ctx, latestKey, data, latestTTL)
	pipe.Publish(ctx, pubsubCh, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish: pipeline for %s: %w", ev.ID, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
