package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and player data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, turnDeadline string) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	AssignFactions(ctx context.Context, gameID string, assignments map[string]string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
}

// ClockRepository owns the per-game shared turn document.
type ClockRepository interface {
	CreateClock(ctx context.Context, clock *model.GameClock) error
	GetClock(ctx context.Context, gameID string) (*model.GameClock, error)
	// CompareAndSwap writes clock if the stored version still equals
	// clock.Version, bumping the version by one. Returns false (and no
	// error) when the stored document has moved on.
	CompareAndSwap(ctx context.Context, clock *model.GameClock) (bool, error)
	ListExpired(ctx context.Context) ([]model.GameClock, error)
	DeleteClock(ctx context.Context, gameID string) error
}

// TurnRepository records clock history with world-state snapshots.
type TurnRepository interface {
	CreateTurnRecord(ctx context.Context, rec *model.TurnRecord) (*model.TurnRecord, error)
	FinalizeTurnRecord(ctx context.Context, id string, stateAfter json.RawMessage) error
	ListTurnRecords(ctx context.Context, gameID string) ([]model.TurnRecord, error)
}

// DeploymentRepository defines the pending-deployment queue.
type DeploymentRepository interface {
	Create(ctx context.Context, d *model.PendingDeployment) (*model.PendingDeployment, error)
	ListByGame(ctx context.Context, gameID string) ([]model.PendingDeployment, error)
	Delete(ctx context.Context, id string) error
	DeleteByGame(ctx context.Context, gameID string) error
}

// NotificationRepository defines the append/amend-once card-play log.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.CardNotification) (*model.CardNotification, error)
	// Resolve amends a card_shown entry in place with its roll outcome.
	// Returns false when the entry is missing or already resolved, so the
	// phase transition can never happen twice.
	Resolve(ctx context.Context, id string, roll, magnitude int, description string, before, after int) (bool, error)
	ListByGame(ctx context.Context, gameID string, limit int) ([]model.CardNotification, error)
}

// GameCache defines live game state operations (Redis).
type GameCache interface {
	SetWorldState(ctx context.Context, gameID string, state json.RawMessage) error
	GetWorldState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetTurnTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTurnTimer(ctx context.Context, gameID string) error
	DeleteGameData(ctx context.Context, gameID string) error
}
