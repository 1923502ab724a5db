package model

import (
	"encoding/json"
	"time"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents a Narrow Seas campaign.
type Game struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CreatorID    string       `json:"creator_id"`
	Status       string       `json:"status"` // waiting, active, finished
	Winner       string       `json:"winner,omitempty"`
	TurnDeadline string       `json:"turn_deadline,omitempty"` // optional auto-advance interval; empty = admin-driven only
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	Players      []GamePlayer `json:"players,omitempty"`
}

// GamePlayer represents a player's membership in a game.
type GamePlayer struct {
	GameID   string    `json:"game_id"`
	UserID   string    `json:"user_id"`
	Faction  string    `json:"faction,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameClock is the single shared turn document for a game. Version is an
// optimistic concurrency counter: every advance must name the version it
// read, and a stale write is rejected rather than silently lost.
type GameClock struct {
	GameID       string     `json:"game_id"`
	CurrentDate  string     `json:"current_date"`
	DayOfWeek    int        `json:"day_of_week"`
	TurnNumber   int        `json:"turn_number"`
	Phase        string     `json:"phase"`
	Version      int64      `json:"version"`
	NextDeadline *time.Time `json:"next_deadline,omitempty"` // when auto-advance fires; nil = admin-driven
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TurnRecord is one historical tick of the clock, with world-state
// snapshots taken before and after the deployment resolution sweep.
type TurnRecord struct {
	ID            string          `json:"id"`
	GameID        string          `json:"game_id"`
	TurnNumber    int             `json:"turn_number"`
	DayOfWeek     int             `json:"day_of_week"`
	CurrentDate   string          `json:"current_date"`
	Phase         string          `json:"phase"`
	CompletedWeek bool            `json:"completed_week"`
	StateBefore   json.RawMessage `json:"state_before"`
	StateAfter    json.RawMessage `json:"state_after,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Deployment kinds.
const (
	DeployCard      = "card"
	DeployUnit      = "unit"
	DeployTaskForce = "task_force"
)

// PendingDeployment is a queued transition that becomes active once the
// clock reaches its activation stamp. Created on deploy, removed on
// promotion, never mutated in between.
type PendingDeployment struct {
	ID              string    `json:"id"`
	GameID          string    `json:"game_id"`
	Kind            string    `json:"kind"`
	Faction         string    `json:"faction"`
	CardID          string    `json:"card_id,omitempty"`
	UnitID          string    `json:"unit_id,omitempty"`
	TaskForceID     string    `json:"task_force_id,omitempty"`
	AreaID          string    `json:"area_id,omitempty"`
	DestTaskForceID string    `json:"dest_task_force_id,omitempty"`
	ActivatesAtTurn int       `json:"activates_at_turn"`
	ActivatesAtDay  int       `json:"activates_at_day"`
	CreatedAt       time.Time `json:"created_at"`
}

// CardNotification is one entry in the shared card-play log. Randomized
// cards appear first in phase card_shown and are amended in place (found
// by ID) once the roll resolves; the log is append/amend only.
type CardNotification struct {
	ID                string     `json:"id"`
	GameID            string     `json:"game_id"`
	Faction           string     `json:"faction"`
	CardID            string     `json:"card_id"`
	AreaID            string     `json:"area_id"`
	Phase             string     `json:"phase"` // card_shown, result_ready
	Roll              int        `json:"roll,omitempty"`
	Magnitude         int        `json:"magnitude,omitempty"`
	EffectDescription string     `json:"effect_description,omitempty"`
	InfluenceBefore   int        `json:"influence_before,omitempty"`
	InfluenceAfter    int        `json:"influence_after,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}
