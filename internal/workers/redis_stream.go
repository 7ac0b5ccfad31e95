package workers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	rplatform "advent-raffle-backend/internal/platform/redis"
	"advent-raffle-backend/internal/service/raffle"
)

const (
	consumerGroup  = "advent_raffle_allocators"
	eventRunRaffle = "run_raffle"
)

// Allocator runs a raffle.
type Allocator interface {
	Allocate(ctx context.Context, req raffle.AllocationRequest) (*raffle.AllocationResult, error)
}

// RaffleTriggerWorker consumes run_raffle events from a Redis stream, so a
// scheduler can trigger allocations without reaching the HTTP API.
// Entries carry "type" and an optional "door" field.
type RaffleTriggerWorker struct {
	rdb       *rplatform.Client
	stream    string
	consumer  string
	allocator Allocator
	token     string
	block     time.Duration
	log       zerolog.Logger
}

func NewRaffleTriggerWorker(rdb *rplatform.Client, stream, consumer string, allocator Allocator, token string) *RaffleTriggerWorker {
	return &RaffleTriggerWorker{
		rdb:       rdb,
		stream:    stream,
		consumer:  consumer,
		allocator: allocator,
		token:     token,
		block:     5 * time.Second,
		log:       logger.Component("raffle_trigger").With().Str("stream", stream).Logger(),
	}
}

// Start reads the stream until ctx is cancelled.
func (w *RaffleTriggerWorker) Start(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, consumerGroup, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}

	w.log.Info().Str("consumer", w.consumer).Msg("Starting raffle trigger worker")
	for {
		entries, err := w.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    1,
			Block:    w.block,
		}).Result()

		if ctx.Err() != nil {
			w.log.Info().Msg("Stopping raffle trigger worker")
			return nil
		}
		if err != nil {
			if !errors.Is(err, goredis.Nil) {
				w.log.Error().Err(err).Msg("Error reading from stream")
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
			continue
		}

		for _, stream := range entries {
			for _, msg := range stream.Messages {
				w.process(ctx, msg.ID, msg.Values)
				// Triggers are idempotent, a failed run is retried by the next trigger.
				if err := w.rdb.XAck(ctx, w.stream, consumerGroup, msg.ID).Err(); err != nil {
					w.log.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack trigger")
				}
			}
		}
	}
}

func (w *RaffleTriggerWorker) process(ctx context.Context, id string, values map[string]interface{}) {
	log := w.log.With().Str("id", id).Logger()

	eventType, _ := values["type"].(string)
	if eventType != eventRunRaffle {
		log.Debug().Str("type", eventType).Msg("Ignoring stream entry")
		return
	}

	req := raffle.AllocationRequest{Token: w.token, Now: time.Now()}
	if raw, ok := values["door"].(string); ok && raw != "" {
		door, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn().Str("door", raw).Msg("Invalid door in run_raffle event")
			return
		}
		req.Door = door
	}

	res, err := w.allocator.Allocate(ctx, req)
	if err != nil {
		log.Error().
			Str("error_code", string(apperrors.CodeOf(err))).
			Err(err).
			Int("door", req.Door).
			Msg("Triggered raffle failed")
		return
	}
	log.Info().
		Str("status", res.Status).
		Int("door", res.Door).
		Int("winners", res.WinnersCount()).
		Msg("Triggered raffle finished")
}
