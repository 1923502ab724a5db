package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/narrow-seas/api/internal/model"
	"github.com/freeeve/narrow-seas/api/internal/repository"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

// ErrClockConflict is returned when a concurrent advance won the version
// race. The losing caller should re-read the clock rather than retry
// blindly; its advance has already happened.
var ErrClockConflict = errors.New("clock was advanced concurrently")

// TurnService orchestrates clock advancement: the pure state transition,
// optimistic persistence, the deployment sweep, weekly income, and timer
// management for auto-advancing games.
type TurnService struct {
	gameRepo    repository.GameRepository
	clockRepo   repository.ClockRepository
	turnRepo    repository.TurnRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	deployments *DeploymentService

	// gameLocks prevents concurrent advancement of the same game within
	// this process. The keyspace listener and poller can fire together;
	// cross-process races are caught by the clock version check.
	gameLocks sync.Map
}

// NewTurnService creates a TurnService.
func NewTurnService(
	gameRepo repository.GameRepository,
	clockRepo repository.ClockRepository,
	turnRepo repository.TurnRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
	deployments *DeploymentService,
) *TurnService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &TurnService{
		gameRepo:    gameRepo,
		clockRepo:   clockRepo,
		turnRepo:    turnRepo,
		cache:       cache,
		broadcaster: broadcaster,
		deployments: deployments,
	}
}

// gameLock returns the mutex for a given game ID.
func (s *TurnService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// clockToTurnState converts the persisted clock document into the pure
// state the engine operates on.
func clockToTurnState(c *model.GameClock) wargame.TurnState {
	return wargame.TurnState{
		CurrentDate: c.CurrentDate,
		DayOfWeek:   c.DayOfWeek,
		TurnNumber:  c.TurnNumber,
		Phase:       wargame.Phase(c.Phase),
	}
}

// InitializeGame seeds the live world state when a game starts and arms
// the auto-advance timer if the game has a turn deadline configured.
func (s *TurnService) InitializeGame(ctx context.Context, gameID string, world *wargame.WorldState, deadline *time.Time) error {
	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return fmt.Errorf("seed world state: %w", err)
	}
	if deadline != nil {
		if err := s.cache.SetTurnTimer(ctx, gameID, *deadline); err != nil {
			return fmt.Errorf("set turn timer: %w", err)
		}
		clock, err := s.clockRepo.GetClock(ctx, gameID)
		if err != nil {
			return err
		}
		if clock != nil {
			clock.NextDeadline = deadline
			if ok, err := s.clockRepo.CompareAndSwap(ctx, clock); err != nil {
				return err
			} else if !ok {
				return ErrClockConflict
			}
		}
	}
	return nil
}

// AdvanceTurn moves a game's shared clock forward by one step. Only the
// game creator may advance manually; the timer listener passes an empty
// userID. The clock write is guarded by its version counter, so of two
// concurrent advances exactly one lands and the other gets
// ErrClockConflict with no side effects.
func (s *TurnService) AdvanceTurn(ctx context.Context, gameID, userID string) (*wargame.AdvanceResult, error) {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if userID != "" && game.CreatorID != userID {
		return nil, ErrNotCreator
	}

	clock, err := s.clockRepo.GetClock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		return nil, ErrClockNotFound
	}

	prev := clockToTurnState(clock)
	result := wargame.AdvanceTurn(prev)
	next := result.NewState

	var deadline *time.Time
	if game.TurnDeadline != "" {
		if dur, err := time.ParseDuration(game.TurnDeadline); err == nil {
			d := time.Now().Add(dur)
			deadline = &d
		}
	}

	// Claim the advance before any side effects. A losing concurrent
	// advance stops here and the world is touched exactly once.
	clock.CurrentDate = next.CurrentDate
	clock.DayOfWeek = next.DayOfWeek
	clock.TurnNumber = next.TurnNumber
	clock.Phase = string(next.Phase)
	clock.NextDeadline = deadline
	ok, err := s.clockRepo.CompareAndSwap(ctx, clock)
	if err != nil {
		return nil, fmt.Errorf("swap clock: %w", err)
	}
	if !ok {
		log.Info().Str("gameId", gameID).Int64("version", clock.Version).Msg("Clock advance lost version race")
		return nil, ErrClockConflict
	}

	world, err := loadWorld(ctx, s.cache, gameID)
	if err != nil {
		return nil, err
	}
	beforeJSON, err := json.Marshal(world)
	if err != nil {
		return nil, fmt.Errorf("marshal world before: %w", err)
	}

	record, err := s.turnRepo.CreateTurnRecord(ctx, &model.TurnRecord{
		GameID:        gameID,
		TurnNumber:    next.TurnNumber,
		DayOfWeek:     next.DayOfWeek,
		CurrentDate:   next.CurrentDate,
		Phase:         string(next.Phase),
		CompletedWeek: result.CompletedWeek,
		StateBefore:   beforeJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create turn record: %w", err)
	}

	if next.Phase == wargame.PhaseTurn {
		activated, err := s.deployments.ResolveDue(ctx, gameID, next, world)
		if err != nil {
			return nil, fmt.Errorf("deployment sweep: %w", err)
		}
		if len(activated) > 0 {
			log.Info().Str("gameId", gameID).Int("count", len(activated)).Msg("Activated pending deployments")
		}
	}

	if result.CompletedWeek {
		world.GrantWeeklyIncome()
	}

	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return nil, err
	}
	afterJSON, err := json.Marshal(world)
	if err != nil {
		return nil, fmt.Errorf("marshal world after: %w", err)
	}
	if err := s.turnRepo.FinalizeTurnRecord(ctx, record.ID, afterJSON); err != nil {
		return nil, fmt.Errorf("finalize turn record: %w", err)
	}

	if deadline != nil {
		if err := s.cache.SetTurnTimer(ctx, gameID, *deadline); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Failed to arm turn timer")
		}
	} else {
		if err := s.cache.ClearTurnTimer(ctx, gameID); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to clear turn timer")
		}
	}

	log.Info().
		Str("gameId", gameID).
		Str("date", next.CurrentDate).
		Int("day", next.DayOfWeek).
		Int("turn", next.TurnNumber).
		Str("phase", string(next.Phase)).
		Bool("completedWeek", result.CompletedWeek).
		Msg("Clock advanced")

	s.broadcaster.BroadcastGameEvent(gameID, "turn_changed", map[string]any{
		"current_date": next.CurrentDate,
		"day_of_week":  next.DayOfWeek,
		"turn_number":  next.TurnNumber,
		"phase":        string(next.Phase),
		"display":      wargame.FormatTurnDisplay(next),
	})
	if result.PrePlanningTransition {
		s.broadcaster.BroadcastGameEvent(gameID, "planning_started", map[string]any{
			"current_date": next.CurrentDate,
		})
	}
	if result.PlanningTransition {
		s.broadcaster.BroadcastGameEvent(gameID, "campaign_started", map[string]any{
			"current_date": next.CurrentDate,
			"turn_number":  next.TurnNumber,
		})
	}
	if result.CompletedWeek {
		s.broadcaster.BroadcastGameEvent(gameID, "week_completed", map[string]any{
			"turn_number":    next.TurnNumber,
			"command_points": world.CommandPoints,
		})
	}

	return &result, nil
}

// CurrentClock returns a game's clock document.
func (s *TurnService) CurrentClock(ctx context.Context, gameID string) (*model.GameClock, error) {
	clock, err := s.clockRepo.GetClock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		return nil, ErrClockNotFound
	}
	return clock, nil
}

// CurrentWorld returns the live world snapshot for a game.
func (s *TurnService) CurrentWorld(ctx context.Context, gameID string) (*wargame.WorldState, error) {
	return loadWorld(ctx, s.cache, gameID)
}

// History returns a game's turn records in clock order.
func (s *TurnService) History(ctx context.Context, gameID string) ([]model.TurnRecord, error) {
	return s.turnRepo.ListTurnRecords(ctx, gameID)
}

// RecoverActiveGames rehydrates Redis state for all active games from
// Postgres. Called on server startup to restore timers and world state
// lost during a restart.
func (s *TurnService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}

	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")

	for _, game := range games {
		clock, err := s.clockRepo.GetClock(ctx, game.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to get clock during recovery")
			continue
		}
		if clock == nil {
			log.Warn().Str("gameId", game.ID).Msg("Active game has no clock, skipping")
			continue
		}

		cached, err := s.cache.GetWorldState(ctx, game.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to check cached world state")
			continue
		}
		if cached == nil {
			world, err := s.latestWorld(ctx, game.ID)
			if err != nil {
				log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to rebuild world state")
				continue
			}
			if err := saveWorld(ctx, s.cache, game.ID, world); err != nil {
				log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to restore world state")
				continue
			}
		}

		if clock.NextDeadline != nil && time.Now().Before(*clock.NextDeadline) {
			if err := s.cache.SetTurnTimer(ctx, game.ID, *clock.NextDeadline); err != nil {
				log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to restore timer")
			}
		}

		log.Info().Str("gameId", game.ID).Str("date", clock.CurrentDate).
			Int("turn", clock.TurnNumber).Str("phase", clock.Phase).
			Msg("Recovered game state")
	}

	return nil
}

// latestWorld rebuilds the world snapshot from the newest turn record,
// falling back to the initial world for games with no history yet.
func (s *TurnService) latestWorld(ctx context.Context, gameID string) (*wargame.WorldState, error) {
	records, err := s.turnRepo.ListTurnRecords(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		raw := records[i].StateAfter
		if raw == nil {
			raw = records[i].StateBefore
		}
		if raw == nil {
			continue
		}
		var world wargame.WorldState
		if err := json.Unmarshal(raw, &world); err != nil {
			return nil, fmt.Errorf("unmarshal turn record state: %w", err)
		}
		return &world, nil
	}
	return wargame.NewInitialWorldState(), nil
}

// CleanupStoppedGame broadcasts the game_ended event and clears timers,
// cached state, and the pending queue.
func (s *TurnService) CleanupStoppedGame(ctx context.Context, gameID string) error {
	s.broadcaster.BroadcastGameEvent(gameID, "game_ended", map[string]any{
		"reason": "stopped",
	})
	if err := s.deployments.deployRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete pending deployments: %w", err)
	}
	return s.cache.DeleteGameData(ctx, gameID)
}
