package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

// DeploymentRepo handles the pending-deployment queue.
type DeploymentRepo struct {
	db *sql.DB
}

// NewDeploymentRepo creates a DeploymentRepo.
func NewDeploymentRepo(db *sql.DB) *DeploymentRepo {
	return &DeploymentRepo{db: db}
}

// Create inserts a pending deployment.
func (r *DeploymentRepo) Create(ctx context.Context, d *model.PendingDeployment) (*model.PendingDeployment, error) {
	var out model.PendingDeployment
	var cardID, unitID, tfID, areaID, destTF sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO pending_deployments
		   (game_id, kind, faction, card_id, unit_id, task_force_id, area_id, dest_task_force_id, activates_at_turn, activates_at_day)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, game_id, kind, faction, card_id, unit_id, task_force_id, area_id, dest_task_force_id,
		           activates_at_turn, activates_at_day, created_at`,
		d.GameID, d.Kind, d.Faction, nullStr(d.CardID), nullStr(d.UnitID), nullStr(d.TaskForceID),
		nullStr(d.AreaID), nullStr(d.DestTaskForceID), d.ActivatesAtTurn, d.ActivatesAtDay,
	).Scan(&out.ID, &out.GameID, &out.Kind, &out.Faction, &cardID, &unitID, &tfID, &areaID, &destTF,
		&out.ActivatesAtTurn, &out.ActivatesAtDay, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create pending deployment: %w", err)
	}
	out.CardID = cardID.String
	out.UnitID = unitID.String
	out.TaskForceID = tfID.String
	out.AreaID = areaID.String
	out.DestTaskForceID = destTF.String
	return &out, nil
}

// ListByGame returns all pending deployments for a game.
func (r *DeploymentRepo) ListByGame(ctx context.Context, gameID string) ([]model.PendingDeployment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, kind, faction, COALESCE(card_id, ''), COALESCE(unit_id, ''),
		        COALESCE(task_force_id, ''), COALESCE(area_id, ''), COALESCE(dest_task_force_id, ''),
		        activates_at_turn, activates_at_day, created_at
		 FROM pending_deployments WHERE game_id = $1
		 ORDER BY activates_at_turn, activates_at_day, created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list pending deployments: %w", err)
	}
	defer rows.Close()

	var deployments []model.PendingDeployment
	for rows.Next() {
		var d model.PendingDeployment
		if err := rows.Scan(&d.ID, &d.GameID, &d.Kind, &d.Faction, &d.CardID, &d.UnitID,
			&d.TaskForceID, &d.AreaID, &d.DestTaskForceID,
			&d.ActivatesAtTurn, &d.ActivatesAtDay, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	return deployments, rows.Err()
}

// Delete removes a pending deployment once promoted (or orphaned).
func (r *DeploymentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_deployments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pending deployment: %w", err)
	}
	return nil
}

// DeleteByGame removes all pending deployments for a game (on game end).
func (r *DeploymentRepo) DeleteByGame(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_deployments WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game deployments: %w", err)
	}
	return nil
}
