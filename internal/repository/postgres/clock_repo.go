package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

// ClockRepo handles the per-game shared turn document.
type ClockRepo struct {
	db *sql.DB
}

// NewClockRepo creates a ClockRepo.
func NewClockRepo(db *sql.DB) *ClockRepo {
	return &ClockRepo{db: db}
}

// CreateClock inserts the clock document for a new game at version 0.
func (r *ClockRepo) CreateClock(ctx context.Context, clock *model.GameClock) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_clocks (game_id, clock_date, day_of_week, turn_number, phase, version, next_deadline)
		 VALUES ($1, $2, $3, $4, $5, 0, $6)`,
		clock.GameID, clock.CurrentDate, clock.DayOfWeek, clock.TurnNumber, clock.Phase, clock.NextDeadline)
	if err != nil {
		return fmt.Errorf("create clock: %w", err)
	}
	return nil
}

// GetClock returns the clock document for a game.
func (r *ClockRepo) GetClock(ctx context.Context, gameID string) (*model.GameClock, error) {
	var c model.GameClock
	err := r.db.QueryRowContext(ctx,
		`SELECT game_id, clock_date, day_of_week, turn_number, phase, version, next_deadline, updated_at
		 FROM game_clocks WHERE game_id = $1`, gameID,
	).Scan(&c.GameID, &c.CurrentDate, &c.DayOfWeek, &c.TurnNumber, &c.Phase, &c.Version, &c.NextDeadline, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clock: %w", err)
	}
	return &c, nil
}

// CompareAndSwap writes the clock only if the stored version still equals
// clock.Version. Two admins advancing the same clock concurrently race on
// this guard; the loser observes false and must re-read.
func (r *ClockRepo) CompareAndSwap(ctx context.Context, clock *model.GameClock) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_clocks
		 SET clock_date = $1, day_of_week = $2, turn_number = $3, phase = $4,
		     version = version + 1, next_deadline = $5, updated_at = now()
		 WHERE game_id = $6 AND version = $7`,
		clock.CurrentDate, clock.DayOfWeek, clock.TurnNumber, clock.Phase,
		clock.NextDeadline, clock.GameID, clock.Version)
	if err != nil {
		return false, fmt.Errorf("swap clock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap clock rows: %w", err)
	}
	return n == 1, nil
}

// ListExpired returns clocks of active games whose auto-advance deadline
// has passed.
func (r *ClockRepo) ListExpired(ctx context.Context) ([]model.GameClock, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.game_id, c.clock_date, c.day_of_week, c.turn_number, c.phase, c.version, c.next_deadline, c.updated_at
		 FROM game_clocks c
		 JOIN games g ON g.id = c.game_id
		 WHERE c.next_deadline IS NOT NULL AND c.next_deadline < now() AND g.status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("list expired clocks: %w", err)
	}
	defer rows.Close()

	var clocks []model.GameClock
	for rows.Next() {
		var c model.GameClock
		if err := rows.Scan(&c.GameID, &c.CurrentDate, &c.DayOfWeek, &c.TurnNumber, &c.Phase, &c.Version, &c.NextDeadline, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expired clock: %w", err)
		}
		clocks = append(clocks, c)
	}
	return clocks, rows.Err()
}

// DeleteClock removes a game's clock document.
func (r *ClockRepo) DeleteClock(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM game_clocks WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete clock: %w", err)
	}
	return nil
}
