package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

// NotificationRepo handles the shared card-play log. Entries are appended
// once and amended at most once; they are never deleted while the game runs.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo creates a NotificationRepo.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create appends a notification and returns it with its generated ID. The
// ID is the key later amendments use, so the caller must retain it across
// the delay between the two phases. Entries inserted directly in
// result_ready get their resolved timestamp at insert time.
func (r *NotificationRepo) Create(ctx context.Context, n *model.CardNotification) (*model.CardNotification, error) {
	var out model.CardNotification
	var resolvedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO card_notifications
		   (game_id, faction, card_id, area_id, phase, roll, magnitude, effect_description, influence_before, influence_after, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CASE WHEN $5 = 'result_ready' THEN now() END)
		 RETURNING id, game_id, faction, card_id, area_id, phase, roll, magnitude,
		           COALESCE(effect_description, ''), influence_before, influence_after, created_at, resolved_at`,
		n.GameID, n.Faction, n.CardID, n.AreaID, n.Phase,
		n.Roll, n.Magnitude, nullStr(n.EffectDescription), n.InfluenceBefore, n.InfluenceAfter,
	).Scan(&out.ID, &out.GameID, &out.Faction, &out.CardID, &out.AreaID, &out.Phase,
		&out.Roll, &out.Magnitude, &out.EffectDescription, &out.InfluenceBefore, &out.InfluenceAfter, &out.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if resolvedAt.Valid {
		out.ResolvedAt = &resolvedAt.Time
	}
	return &out, nil
}

// Resolve amends a card_shown entry in place with its roll outcome. The
// phase guard in the WHERE clause makes the transition happen at most once
// even under concurrent resolution attempts.
func (r *NotificationRepo) Resolve(ctx context.Context, id string, roll, magnitude int, description string, before, after int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE card_notifications
		 SET phase = 'result_ready', roll = $1, magnitude = $2, effect_description = $3,
		     influence_before = $4, influence_after = $5, resolved_at = now()
		 WHERE id = $6 AND phase = 'card_shown'`,
		roll, magnitude, description, before, after, id)
	if err != nil {
		return false, fmt.Errorf("resolve notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve notification rows: %w", err)
	}
	return n == 1, nil
}

// ListByGame returns a game's notification log, newest first.
func (r *NotificationRepo) ListByGame(ctx context.Context, gameID string, limit int) ([]model.CardNotification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, faction, card_id, area_id, phase, roll, magnitude,
		        COALESCE(effect_description, ''), influence_before, influence_after, created_at, resolved_at
		 FROM card_notifications WHERE game_id = $1
		 ORDER BY created_at DESC LIMIT $2`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.CardNotification
	for rows.Next() {
		var n model.CardNotification
		var resolvedAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.GameID, &n.Faction, &n.CardID, &n.AreaID, &n.Phase,
			&n.Roll, &n.Magnitude, &n.EffectDescription, &n.InfluenceBefore, &n.InfluenceAfter,
			&n.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if resolvedAt.Valid {
			n.ResolvedAt = &resolvedAt.Time
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
