package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for AI intakes
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new intake repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new pending intake
func (r *Repository) Create(ctx context.Context, in *Intake) error {
	items, err := json.Marshal(in.ParsedItems)
	if err != nil {
		return errors.Wrap(err, "failed to encode parsed items")
	}

	query := `
		INSERT INTO ai_intakes (id, user_id, source_text, parsed_items, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.pool.Exec(ctx, query, in.ID, in.UserID, in.SourceText, items, in.Status)
	if err != nil {
		return errors.Wrap(err, "failed to create intake")
	}

	return nil
}

// Get retrieves an intake owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Intake, error) {
	query := `
		SELECT id, user_id, source_text, parsed_items, status, created_at, confirmed_at
		FROM ai_intakes
		WHERE id = $1 AND user_id = $2`

	in := &Intake{}
	var items []byte
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&in.ID, &in.UserID, &in.SourceText, &items, &in.Status,
		&in.CreatedAt, &in.ConfirmedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("intake", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get intake")
	}

	if err := json.Unmarshal(items, &in.ParsedItems); err != nil {
		return nil, errors.Wrap(err, "failed to decode parsed items")
	}

	return in, nil
}

// List lists intakes for a user, optionally filtered by status
func (r *Repository) List(ctx context.Context, userID types.ID, status Status) ([]Intake, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if status != "" {
		conditions = append(conditions, "status = $2")
		args = append(args, status)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, source_text, parsed_items, status, created_at, confirmed_at
		FROM ai_intakes
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list intakes")
	}
	defer rows.Close()

	var intakes []Intake
	for rows.Next() {
		var in Intake
		var items []byte
		err := rows.Scan(
			&in.ID, &in.UserID, &in.SourceText, &items, &in.Status,
			&in.CreatedAt, &in.ConfirmedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan intake")
		}
		if err := json.Unmarshal(items, &in.ParsedItems); err != nil {
			return nil, errors.Wrap(err, "failed to decode parsed items")
		}
		intakes = append(intakes, in)
	}

	return intakes, nil
}

// UpdateItems replaces the staged items of a pending intake. Confirmed
// intakes are immutable.
func (r *Repository) UpdateItems(ctx context.Context, in *Intake) error {
	items, err := json.Marshal(in.ParsedItems)
	if err != nil {
		return errors.Wrap(err, "failed to encode parsed items")
	}

	query := `
		UPDATE ai_intakes SET parsed_items = $3
		WHERE id = $1 AND user_id = $2 AND status = $4`

	result, err := r.pool.Exec(ctx, query, in.ID, in.UserID, items, StatusPending)
	if err != nil {
		return errors.Wrap(err, "failed to update intake")
	}

	if result.RowsAffected() == 0 {
		// Either the intake is not visible to this user or it has
		// already been confirmed.
		var status Status
		err := r.pool.QueryRow(ctx,
			`SELECT status FROM ai_intakes WHERE id = $1 AND user_id = $2`,
			in.ID, in.UserID,
		).Scan(&status)
		if err == pgx.ErrNoRows {
			return errors.NotFound("intake", in.ID.String())
		}
		if err != nil {
			return errors.Wrap(err, "failed to check intake status")
		}
		return errors.Conflict("intake already confirmed")
	}

	return nil
}

// ClaimPending atomically moves a pending intake to confirmed, stamping
// confirmedAt. Exactly one concurrent caller wins; losers get a conflict
// and callers that cannot see the intake at all get not found.
func (r *Repository) ClaimPending(ctx context.Context, id, userID types.ID, at time.Time) error {
	query := `
		UPDATE ai_intakes SET status = $3, confirmed_at = $4
		WHERE id = $1 AND user_id = $2 AND status = $5`

	result, err := r.pool.Exec(ctx, query, id, userID, StatusConfirmed, at, StatusPending)
	if err != nil {
		return errors.Wrap(err, "failed to claim intake")
	}

	if result.RowsAffected() == 0 {
		var status Status
		err := r.pool.QueryRow(ctx,
			`SELECT status FROM ai_intakes WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&status)
		if err == pgx.ErrNoRows {
			return errors.NotFound("intake", id.String())
		}
		if err != nil {
			return errors.Wrap(err, "failed to check intake status")
		}
		return errors.Conflict("intake already confirmed")
	}

	return nil
}

// Delete removes an intake owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM ai_intakes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete intake")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("intake", id.String())
	}

	return nil
}
