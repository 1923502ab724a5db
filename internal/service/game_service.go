package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/freeeve/narrow-seas/api/internal/model"
	"github.com/freeeve/narrow-seas/api/internal/repository"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotWaiting  = errors.New("game is not in waiting status")
	ErrGameFull        = errors.New("game already has 2 players")
	ErrNotEnough       = errors.New("need exactly 2 players to start")
	ErrNotCreator      = errors.New("only the creator can do this")
	ErrGameNotActive   = errors.New("game is not active")
	ErrAlreadyJoined   = errors.New("already joined this game")
	ErrNotInGame       = errors.New("you are not in this game")
	ErrInvalidDeadline = errors.New("invalid turn deadline")
)

// GameService handles game lifecycle operations.
type GameService struct {
	gameRepo  repository.GameRepository
	clockRepo repository.ClockRepository
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, clockRepo repository.ClockRepository) *GameService {
	return &GameService{gameRepo: gameRepo, clockRepo: clockRepo}
}

// CreateGame creates a new game in "waiting" status. turnDeadline is an
// optional Go duration string (e.g. "24h"); when set, turns auto-advance
// that long after each change. Empty means the admin advances manually.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID, turnDeadline string) (*model.Game, error) {
	if turnDeadline != "" {
		if _, err := time.ParseDuration(turnDeadline); err != nil {
			return nil, ErrInvalidDeadline
		}
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, turnDeadline)
	if err != nil {
		return nil, err
	}

	// Creator auto-joins.
	if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame adds a player to a waiting game.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count >= 2 {
		return ErrGameFull
	}

	return s.gameRepo.JoinGame(ctx, gameID, userID)
}

// StartGame assigns factions at random and writes the initial pre-planning
// clock document at version 0. The caller is responsible for seeding the
// live world state afterwards (see TurnService.InitializeGame).
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != 2 {
		return nil, ErrNotEnough
	}

	factions := []string{string(wargame.FactionBlue), string(wargame.FactionRed)}
	rand.Shuffle(len(factions), func(i, j int) { factions[i], factions[j] = factions[j], factions[i] })
	assignments := map[string]string{
		game.Players[0].UserID: factions[0],
		game.Players[1].UserID: factions[1],
	}
	if err := s.gameRepo.AssignFactions(ctx, gameID, assignments); err != nil {
		return nil, err
	}

	initial := wargame.InitialTurnState()
	if err := s.clockRepo.CreateClock(ctx, &model.GameClock{
		GameID:      gameID,
		CurrentDate: initial.CurrentDate,
		DayOfWeek:   initial.DayOfWeek,
		TurnNumber:  initial.TurnNumber,
		Phase:       string(initial.Phase),
	}); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// PlayerFaction returns the faction userID plays in the game, or an error
// if they are not a player.
func (s *GameService) PlayerFaction(ctx context.Context, gameID, userID string) (wargame.Faction, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return "", err
	}
	if game == nil {
		return "", ErrGameNotFound
	}
	for _, p := range game.Players {
		if p.UserID == userID && p.Faction != "" {
			return wargame.Faction(p.Faction), nil
		}
	}
	return "", ErrNotInGame
}

// DeleteGame removes a waiting game. Only the game creator can delete a game.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// StopGame ends an active game with no winner. Only the game creator can
// stop a game. Cleanup of timers and cached state happens in
// TurnService.CleanupStoppedGame.
func (s *GameService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
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
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// ListGames returns open games or games the user is in.
func (s *GameService) ListGames(ctx context.Context, userID string, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}
