package condition

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for conditions
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new condition repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// checkLinks verifies that referenced records exist and belong to the owner
func (r *Repository) checkLinks(ctx context.Context, c *Condition) error {
	if c.FamilyMemberID.IsZero() {
		return nil
	}

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM family_members WHERE id = $1 AND user_id = $2)`,
		c.FamilyMemberID, c.UserID,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "failed to verify family member link")
	}
	if !exists {
		return errors.Validation("validation failed", map[string]string{
			"familyMemberId": "referenced family member not found",
		})
	}
	return nil
}

// Create inserts a new condition
func (r *Repository) Create(ctx context.Context, c *Condition) error {
	if err := r.checkLinks(ctx, c); err != nil {
		return err
	}

	query := `
		INSERT INTO conditions (
			id, user_id, family_member_id, name, type, status, severity,
			diagnosed_date, resolved_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.FamilyMemberID, c.Name, c.Type, c.Status, c.Severity,
		c.DiagnosedDate, c.ResolvedDate, c.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create condition")
	}

	return nil
}

// Get retrieves a condition owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Condition, error) {
	query := `
		SELECT id, user_id, family_member_id, name, type, status, severity,
			diagnosed_date, resolved_date, notes, created_at, updated_at
		FROM conditions
		WHERE id = $1 AND user_id = $2`

	c := &Condition{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.FamilyMemberID, &c.Name, &c.Type, &c.Status, &c.Severity,
		&c.DiagnosedDate, &c.ResolvedDate, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("condition", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get condition")
	}

	return c, nil
}

// Update persists changes to a condition
func (r *Repository) Update(ctx context.Context, c *Condition) error {
	if err := r.checkLinks(ctx, c); err != nil {
		return err
	}

	query := `
		UPDATE conditions SET
			family_member_id = $3, name = $4, type = $5, status = $6,
			severity = $7, diagnosed_date = $8, resolved_date = $9, notes = $10,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.FamilyMemberID, c.Name, c.Type, c.Status,
		c.Severity, c.DiagnosedDate, c.ResolvedDate, c.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update condition")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("condition", c.ID.String())
	}

	return nil
}

// Delete removes a condition owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM conditions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete condition")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("condition", id.String())
	}

	return nil
}

// List lists conditions for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Condition, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argNum := 2

	if filter.FamilyMemberID != nil {
		conditions = append(conditions, fmt.Sprintf("family_member_id = $%d", argNum))
		args = append(args, *filter.FamilyMemberID)
		argNum++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argNum))
		args = append(args, *filter.Type)
		argNum++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, family_member_id, name, type, status, severity,
			diagnosed_date, resolved_date, notes, created_at, updated_at
		FROM conditions
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conditions")
	}
	defer rows.Close()

	var list []Condition
	for rows.Next() {
		var c Condition
		err := rows.Scan(
			&c.ID, &c.UserID, &c.FamilyMemberID, &c.Name, &c.Type, &c.Status, &c.Severity,
			&c.DiagnosedDate, &c.ResolvedDate, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan condition")
		}
		list = append(list, c)
	}

	return list, nil
}
