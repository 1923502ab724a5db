package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

// TurnRepo handles turn history database operations.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// CreateTurnRecord inserts a new turn record with its pre-sweep snapshot.
func (r *TurnRepo) CreateTurnRecord(ctx context.Context, rec *model.TurnRecord) (*model.TurnRecord, error) {
	var out model.TurnRecord
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO turn_records (game_id, turn_number, day_of_week, clock_date, phase, completed_week, state_before)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, game_id, turn_number, day_of_week, clock_date, phase, completed_week, state_before, created_at`,
		rec.GameID, rec.TurnNumber, rec.DayOfWeek, rec.CurrentDate, rec.Phase, rec.CompletedWeek, rec.StateBefore,
	).Scan(&out.ID, &out.GameID, &out.TurnNumber, &out.DayOfWeek, &out.CurrentDate, &out.Phase, &out.CompletedWeek, &out.StateBefore, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create turn record: %w", err)
	}
	return &out, nil
}

// FinalizeTurnRecord stores the post-sweep snapshot for a turn record.
func (r *TurnRepo) FinalizeTurnRecord(ctx context.Context, id string, stateAfter json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE turn_records SET state_after = $1 WHERE id = $2`, stateAfter, id)
	if err != nil {
		return fmt.Errorf("finalize turn record: %w", err)
	}
	return nil
}

// ListTurnRecords returns a game's turn history in clock order.
func (r *TurnRepo) ListTurnRecords(ctx context.Context, gameID string) ([]model.TurnRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, turn_number, day_of_week, clock_date, phase, completed_week, state_before, state_after, created_at
		 FROM turn_records WHERE game_id = $1
		 ORDER BY created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list turn records: %w", err)
	}
	defer rows.Close()

	var records []model.TurnRecord
	for rows.Next() {
		var rec model.TurnRecord
		var stateAfter sql.NullString
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.TurnNumber, &rec.DayOfWeek, &rec.CurrentDate, &rec.Phase, &rec.CompletedWeek, &rec.StateBefore, &stateAfter, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn record: %w", err)
		}
		if stateAfter.Valid {
			rec.StateAfter = json.RawMessage(stateAfter.String)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
