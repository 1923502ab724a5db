package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/narrow-seas/api/internal/model"
	"github.com/freeeve/narrow-seas/api/internal/repository"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrCardNotInHand      = errors.New("card is not in your hand")
	ErrInvalidArea        = errors.New("invalid area")
	ErrInsufficientPoints = errors.New("not enough command points")
	ErrWorldNotFound      = errors.New("world state not found")
	ErrClockNotFound      = errors.New("game clock not found")
)

// CardService handles card purchase and play, including the two-step
// notification flow for randomized cards.
type CardService struct {
	gameRepo    repository.GameRepository
	clockRepo   repository.ClockRepository
	deployRepo  repository.DeploymentRepository
	noteRepo    repository.NotificationRepository
	cache       repository.GameCache
	broadcaster Broadcaster

	// roll produces a 2d6 result. Swappable in tests.
	roll func() int
}

// NewCardService creates a CardService.
func NewCardService(
	gameRepo repository.GameRepository,
	clockRepo repository.ClockRepository,
	deployRepo repository.DeploymentRepository,
	noteRepo repository.NotificationRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
) *CardService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &CardService{
		gameRepo:    gameRepo,
		clockRepo:   clockRepo,
		deployRepo:  deployRepo,
		noteRepo:    noteRepo,
		cache:       cache,
		broadcaster: broadcaster,
		roll:        roll2d6,
	}
}

func roll2d6() int {
	return rand.Intn(6) + rand.Intn(6) + 2
}

// PurchaseCard spends command points to add a card to the faction's hand.
func (s *CardService) PurchaseCard(ctx context.Context, gameID, userID, cardID string) (*wargame.WorldState, error) {
	faction, err := s.playerFaction(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	card, ok := wargame.CardByID(cardID)
	if !ok {
		return nil, ErrCardNotFound
	}

	world, err := loadWorld(ctx, s.cache, gameID)
	if err != nil {
		return nil, err
	}
	if world.CommandPoints[faction] < card.Cost {
		return nil, ErrInsufficientPoints
	}
	world.CommandPoints[faction] -= card.Cost
	world.Hands[faction] = append(world.Hands[faction], card.ID)

	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastGameEvent(gameID, "card_purchased", map[string]any{
		"faction":        string(faction),
		"card_id":        card.ID,
		"command_points": world.CommandPoints[faction],
	})
	return world, nil
}

// PlayResult describes the outcome of playing a card: either a queued
// deployment (delayed cards) or a notification (immediate effect).
type PlayResult struct {
	Queued       *model.PendingDeployment `json:"queued,omitempty"`
	Notification *model.CardNotification  `json:"notification,omitempty"`
}

// PlayCard plays a card from the hand into an operational area. Cards with
// a deployment delay are queued as pending deployments; the rest take
// effect immediately.
func (s *CardService) PlayCard(ctx context.Context, gameID, userID, cardID, areaID string) (*PlayResult, error) {
	faction, err := s.playerFaction(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	card, ok := wargame.CardByID(cardID)
	if !ok {
		return nil, ErrCardNotFound
	}
	if _, ok := wargame.AreaByID(areaID); !ok {
		return nil, ErrInvalidArea
	}

	world, err := loadWorld(ctx, s.cache, gameID)
	if err != nil {
		return nil, err
	}
	if !world.HandContains(faction, cardID) {
		return nil, ErrCardNotInHand
	}
	world.RemoveFromHand(faction, cardID)

	if card.DelayDays > 0 {
		clock, err := s.clockRepo.GetClock(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if clock == nil {
			return nil, ErrClockNotFound
		}
		stamp := wargame.ActivationFor(clockToTurnState(clock), card.DelayDays)

		pending, err := s.deployRepo.Create(ctx, &model.PendingDeployment{
			GameID:          gameID,
			Kind:            model.DeployCard,
			Faction:         string(faction),
			CardID:          card.ID,
			AreaID:          areaID,
			ActivatesAtTurn: stamp.Turn,
			ActivatesAtDay:  stamp.Day,
		})
		if err != nil {
			return nil, err
		}
		if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
			return nil, err
		}

		s.broadcaster.BroadcastGameEvent(gameID, "deployment_queued", map[string]any{
			"deployment_id":     pending.ID,
			"kind":              pending.Kind,
			"faction":           string(faction),
			"card_id":           card.ID,
			"area_id":           areaID,
			"activates_at_turn": stamp.Turn,
			"activates_at_day":  stamp.Day,
		})
		return &PlayResult{Queued: pending}, nil
	}

	note, err := s.ApplyCardEffect(ctx, gameID, world, faction, card.ID, areaID)
	if err != nil {
		return nil, err
	}
	if err := saveWorld(ctx, s.cache, gameID, world); err != nil {
		return nil, err
	}
	return &PlayResult{Notification: note}, nil
}

// ApplyCardEffect places a card into an area and applies its influence
// effect to world, recording the play in the shared notification log.
// Randomized cards go through the two-step reveal: the play is announced
// to both factions before the roll, then the same record (found by its
// generated ID) is amended with the result. Cards with a fixed outcome
// skip the reveal and log a single already-resolved entry. The caller
// persists world.
func (s *CardService) ApplyCardEffect(ctx context.Context, gameID string, world *wargame.WorldState, faction wargame.Faction, cardID, areaID string) (*model.CardNotification, error) {
	card, ok := wargame.CardByID(cardID)
	if !ok {
		return nil, ErrCardNotFound
	}
	world.ActivateCard(cardID, faction, areaID)

	before := world.InfluenceIn(areaID, faction)

	if !card.Randomized {
		world.AdjustInfluence(areaID, faction, card.Influence)
		after := world.InfluenceIn(areaID, faction)

		note, err := s.noteRepo.Create(ctx, &model.CardNotification{
			GameID:            gameID,
			Faction:           string(faction),
			CardID:            cardID,
			AreaID:            areaID,
			Phase:             string(wargame.NotificationResultReady),
			Magnitude:         card.Influence,
			EffectDescription: card.Description,
			InfluenceBefore:   before,
			InfluenceAfter:    after,
		})
		if err != nil {
			return nil, fmt.Errorf("create card notification: %w", err)
		}

		s.broadcaster.BroadcastGameEvent(gameID, "card_resolved", map[string]any{
			"notification_id": note.ID,
			"faction":         string(faction),
			"card_id":         cardID,
			"area_id":         areaID,
			"roll":            0,
			"magnitude":       card.Influence,
			"influence_after": after,
		})
		return note, nil
	}

	note, err := s.noteRepo.Create(ctx, &model.CardNotification{
		GameID:          gameID,
		Faction:         string(faction),
		CardID:          cardID,
		AreaID:          areaID,
		Phase:           string(wargame.NotificationCardShown),
		InfluenceBefore: before,
	})
	if err != nil {
		return nil, fmt.Errorf("create card notification: %w", err)
	}

	// Both factions see the play before its outcome is known.
	s.broadcaster.BroadcastGameEvent(gameID, "card_played", map[string]any{
		"notification_id": note.ID,
		"faction":         string(faction),
		"card_id":         cardID,
		"area_id":         areaID,
		"phase":           note.Phase,
	})

	roll := s.roll()
	magnitude := wargame.InfluenceMagnitude(roll, card.Influence)
	description := fmt.Sprintf("%s: rolled %d", card.Name, roll)
	world.AdjustInfluence(areaID, faction, magnitude)
	after := world.InfluenceIn(areaID, faction)

	resolved, err := s.noteRepo.Resolve(ctx, note.ID, roll, magnitude, description, before, after)
	if err != nil {
		return nil, fmt.Errorf("resolve card notification: %w", err)
	}
	if !resolved {
		log.Warn().Str("gameId", gameID).Str("notificationId", note.ID).Msg("Card notification already resolved")
	}
	note.Phase = string(wargame.NotificationResultReady)
	note.Roll = roll
	note.Magnitude = magnitude
	note.EffectDescription = description
	note.InfluenceAfter = after

	s.broadcaster.BroadcastGameEvent(gameID, "card_resolved", map[string]any{
		"notification_id": note.ID,
		"faction":         string(faction),
		"card_id":         cardID,
		"area_id":         areaID,
		"roll":            roll,
		"magnitude":       magnitude,
		"influence_after": after,
	})

	return note, nil
}

// ListNotifications returns the game's card-play log, newest first.
func (s *CardService) ListNotifications(ctx context.Context, gameID string, limit int) ([]model.CardNotification, error) {
	return s.noteRepo.ListByGame(ctx, gameID, limit)
}

func (s *CardService) playerFaction(ctx context.Context, gameID, userID string) (wargame.Faction, error) {
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

// loadWorld reads the live world snapshot from the cache.
func loadWorld(ctx context.Context, cache repository.GameCache, gameID string) (*wargame.WorldState, error) {
	raw, err := cache.GetWorldState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get world state: %w", err)
	}
	if raw == nil {
		return nil, ErrWorldNotFound
	}
	var world wargame.WorldState
	if err := json.Unmarshal(raw, &world); err != nil {
		return nil, fmt.Errorf("unmarshal world state: %w", err)
	}
	return &world, nil
}

// saveWorld writes the live world snapshot back to the cache.
func saveWorld(ctx context.Context, cache repository.GameCache, gameID string, world *wargame.WorldState) error {
	raw, err := json.Marshal(world)
	if err != nil {
		return fmt.Errorf("marshal world state: %w", err)
	}
	return cache.SetWorldState(ctx, gameID, raw)
}
