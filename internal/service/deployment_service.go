package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/narrow-seas/api/internal/model"
	"github.com/freeeve/narrow-seas/api/internal/repository"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

var (
	ErrUnitNotFound      = errors.New("unit not found")
	ErrTaskForceNotFound = errors.New("task force not found")
	ErrInvalidUnitType   = errors.New("invalid unit type")
	ErrNotYourForce      = errors.New("that force belongs to the other faction")
)

// DeploymentService queues deployments against the shared clock and runs
// the activation sweep when the clock moves.
type DeploymentService struct {
	gameRepo    repository.GameRepository
	clockRepo   repository.ClockRepository
	deployRepo  repository.DeploymentRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	cards       *CardService
}

// NewDeploymentService creates a DeploymentService. cards is used to apply
// card effects when queued cards activate.
func NewDeploymentService(
	gameRepo repository.GameRepository,
	clockRepo repository.ClockRepository,
	deployRepo repository.DeploymentRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
	cards *CardService,
) *DeploymentService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &DeploymentService{
		gameRepo:    gameRepo,
		clockRepo:   clockRepo,
		deployRepo:  deployRepo,
		cache:       cache,
		broadcaster: broadcaster,
		cards:       cards,
	}
}

// DeployTaskForce creates a new task force for the player's faction. With a
// positive delay the force exists immediately but is flagged as pending
// until its activation stamp comes due.
func (s *DeploymentService) DeployTaskForce(ctx context.Context, gameID, userID, name, areaID string, delayDays int) (*wargame.TaskForce, error) {
	faction, err := s.playerFaction(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := wargame.AreaByID(areaID); !ok {
		return nil, ErrInvalidArea
	}

	world, err := loadWorld(ctx, s.cache, gameID)
	if err != nil {
		return nil, err
	}

	tf := wargame.TaskForce{
		ID:                  fmt.Sprintf("%s-tf-%d", faction, len(world.TaskForces)+1),
		Faction:             faction,
		Name:                name,
		AreaID:              areaID,
		IsPendingDeployment: delayDays > 0,
	}
	world.TaskForces = append(world.TaskForces, tf)

	if delayDays > 0 {
		if err := s.queue(ctx, gameID, &model.PendingDeployment{
			GameID:      gameID,
			Kind:        model.DeployTaskForce,
			Faction:     string(faction),
			TaskForceID: tf.ID,
			AreaID:      areaID,
		}, delayDays); err != nil {
			return nil, err
		}
	}
	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return nil, err
	}
	if delayDays == 0 {
		s.broadcastActivated(gameID, model.DeployTaskForce, string(faction), "", tf.ID, areaID)
	}
	return &tf, nil
}

// DeployUnit creates a new unit destined for a task force. With a positive
// delay the unit exists immediately but stays unassigned until activation.
func (s *DeploymentService) DeployUnit(ctx context.Context, gameID, userID, unitType, taskForceID, areaID string, delayDays int) (*wargame.Unit, error) {
	faction, err := s.playerFaction(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	switch wargame.UnitType(unitType) {
	case wargame.UnitCarrier, wargame.UnitDestroyer, wargame.UnitSubmarine, wargame.UnitAmphib, wargame.UnitMarines:
	default:
		return nil, ErrInvalidUnitType
	}
	if areaID != "" {
		if _, ok := wargame.AreaByID(areaID); !ok {
			return nil, ErrInvalidArea
		}
	}

	world, err := loadWorld(ctx, s.cache, gameID)
	if err != nil {
		return nil, err
	}
	tf := world.TaskForceByID(taskForceID)
	if tf == nil {
		return nil, ErrTaskForceNotFound
	}
	if tf.Faction != faction {
		return nil, ErrNotYourForce
	}

	unit := wargame.Unit{
		ID:      fmt.Sprintf("%s-%s-%d", faction, unitType, len(world.Units)+1),
		Faction: faction,
		Type:    wargame.UnitType(unitType),
	}
	world.Units = append(world.Units, unit)

	if delayDays > 0 {
		if err := s.queue(ctx, gameID, &model.PendingDeployment{
			GameID:          gameID,
			Kind:            model.DeployUnit,
			Faction:         string(faction),
			UnitID:          unit.ID,
			AreaID:          areaID,
			DestTaskForceID: taskForceID,
		}, delayDays); err != nil {
			return nil, err
		}
	} else {
		world.ActivateUnit(unit.ID, taskForceID, areaID)
	}
	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return nil, err
	}
	if delayDays == 0 {
		s.broadcastActivated(gameID, model.DeployUnit, string(faction), unit.ID, taskForceID, areaID)
	}
	return &unit, nil
}

// ListByGame returns the game's pending deployment queue.
func (s *DeploymentService) ListByGame(ctx context.Context, gameID string) ([]model.PendingDeployment, error) {
	return s.deployRepo.ListByGame(ctx, gameID)
}

// ResolveDue promotes every pending deployment whose stamp is due at the
// given clock state, mutating world in place. Each row is deleted once
// applied, so a deployment activates exactly once even if the sweep runs
// again at a later day. Entries whose referenced unit or task force no
// longer exists are dropped without effect.
func (s *DeploymentService) ResolveDue(ctx context.Context, gameID string, state wargame.TurnState, world *wargame.WorldState) ([]model.PendingDeployment, error) {
	pending, err := s.deployRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list pending deployments: %w", err)
	}

	var activated []model.PendingDeployment
	for _, d := range pending {
		stamp := wargame.ActivationStamp{Turn: d.ActivatesAtTurn, Day: d.ActivatesAtDay}
		if !stamp.Due(state) {
			continue
		}

		applied := true
		switch d.Kind {
		case model.DeployCard:
			if _, err := s.cards.ApplyCardEffect(ctx, gameID, world, wargame.Faction(d.Faction), d.CardID, d.AreaID); err != nil {
				return activated, fmt.Errorf("apply card %s: %w", d.CardID, err)
			}
		case model.DeployUnit:
			applied = world.ActivateUnit(d.UnitID, d.DestTaskForceID, d.AreaID)
		case model.DeployTaskForce:
			applied = world.ActivateTaskForce(d.TaskForceID)
		default:
			applied = false
		}

		if err := s.deployRepo.Delete(ctx, d.ID); err != nil {
			return activated, fmt.Errorf("delete pending deployment %s: %w", d.ID, err)
		}
		if !applied {
			log.Warn().Str("gameId", gameID).Str("deploymentId", d.ID).Str("kind", d.Kind).
				Msg("Dropping orphaned pending deployment")
			continue
		}

		activated = append(activated, d)
		s.broadcastActivated(gameID, d.Kind, d.Faction, d.UnitID, firstNonEmpty(d.TaskForceID, d.DestTaskForceID, d.CardID), d.AreaID)
	}
	return activated, nil
}

// queue stamps and persists a pending deployment, then announces it.
func (s *DeploymentService) queue(ctx context.Context, gameID string, d *model.PendingDeployment, delayDays int) error {
	clock, err := s.clockRepo.GetClock(ctx, gameID)
	if err != nil {
		return err
	}
	if clock == nil {
		return ErrClockNotFound
	}
	stamp := wargame.ActivationFor(clockToTurnState(clock), delayDays)
	d.ActivatesAtTurn = stamp.Turn
	d.ActivatesAtDay = stamp.Day

	created, err := s.deployRepo.Create(ctx, d)
	if err != nil {
		return err
	}
	*d = *created

	s.broadcaster.BroadcastGameEvent(gameID, "deployment_queued", map[string]any{
		"deployment_id":     created.ID,
		"kind":              created.Kind,
		"faction":           created.Faction,
		"activates_at_turn": created.ActivatesAtTurn,
		"activates_at_day":  created.ActivatesAtDay,
	})
	return nil
}

func (s *DeploymentService) broadcastActivated(gameID, kind, faction, unitID, targetID, areaID string) {
	s.broadcaster.BroadcastGameEvent(gameID, "deployment_activated", map[string]any{
		"kind":      kind,
		"faction":   faction,
		"unit_id":   unitID,
		"target_id": targetID,
		"area_id":   areaID,
	})
}

func (s *DeploymentService) playerFaction(ctx context.Context, gameID, userID string) (wargame.Faction, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return "", err
	}
	if game == nil {
		return "", ErrGameNotFound
	}
	if game.Status != "active" {
		return "", ErrGameNotActive
	}
	for _, p := range game.Players {
		if p.UserID == userID && p.Faction != "" {
			return wargame.Faction(p.Faction), nil
		}
	}
	return "", ErrNotInGame
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
