package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/narrow-seas/api/internal/repository"
)

// TimerListener listens for Redis keyspace notifications on expired timer
// keys and advances the clock when a game's auto-advance deadline passes.
// Also runs a polling fallback to catch expirations if keyspace
// notifications are unavailable.
type TimerListener struct {
	rdb       *redis.Client
	turnSvc   *TurnService
	clockRepo repository.ClockRepository
}

// NewTimerListener creates a TimerListener.
func NewTimerListener(rdb *redis.Client, turnSvc *TurnService, clockRepo repository.ClockRepository) *TimerListener {
	return &TimerListener{rdb: rdb, turnSvc: turnSvc, clockRepo: clockRepo}
}

// Start begins listening for expired key events and runs a polling fallback.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.pollExpiredClocks(ctx)
}

// listenKeyspace subscribes to Redis keyspace notifications for expired keys.
func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("Timer listener started, listening for expired keys")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

// pollExpiredClocks periodically checks for clocks past their deadline and
// advances them.
func (t *TimerListener) pollExpiredClocks(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Info().Msg("Clock deadline poller started (10s interval)")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Clock deadline poller stopped")
			return
		case <-ticker.C:
			t.checkExpiredClocks(ctx)
		}
	}
}

// checkExpiredClocks finds active games past their deadline and advances them.
func (t *TimerListener) checkExpiredClocks(ctx context.Context) {
	clocks, err := t.clockRepo.ListExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expired clocks")
		return
	}
	if len(clocks) > 0 {
		log.Info().Int("count", len(clocks)).Msg("Poller found expired clocks")
	}
	for _, c := range clocks {
		log.Info().Str("gameId", c.GameID).Str("date", c.CurrentDate).
			Int("turn", c.TurnNumber).Str("phase", c.Phase).
			Msg("Poller advancing expired clock")
		t.advance(ctx, c.GameID)
	}
}

// handleExpiry processes an expired key. Only acts on game timer keys.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":timer") {
		return
	}

	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return
	}
	gameID := parts[1]

	log.Info().Str("gameId", gameID).Msg("Timer expired, advancing clock")
	t.advance(ctx, gameID)
}

// advance runs an automatic advance for a game. A version conflict means
// another trigger already advanced the clock; that is not an error here.
func (t *TimerListener) advance(ctx context.Context, gameID string) {
	if _, err := t.turnSvc.AdvanceTurn(ctx, gameID, ""); err != nil {
		if errors.Is(err, ErrClockConflict) {
			log.Debug().Str("gameId", gameID).Msg("Clock already advanced by another trigger")
			return
		}
		log.Error().Err(err).Str("gameId", gameID).Msg("Auto advance failed")
	}
}
