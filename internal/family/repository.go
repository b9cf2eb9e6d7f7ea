package family

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for family members
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new family repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new family member
func (r *Repository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO family_members (
			id, user_id, name, relationship, date_of_birth, gender, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		member.ID, member.UserID, member.Name, member.Relationship,
		member.DateOfBirth, member.Gender, member.Notes,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("family member already exists")
		}
		return errors.Wrap(err, "failed to create family member")
	}

	return nil
}

// Get retrieves a family member owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Member, error) {
	query := `
		SELECT id, user_id, name, relationship, date_of_birth, gender, notes,
			created_at, updated_at
		FROM family_members
		WHERE id = $1 AND user_id = $2`

	member := &Member{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&member.ID, &member.UserID, &member.Name, &member.Relationship,
		&member.DateOfBirth, &member.Gender, &member.Notes,
		&member.CreatedAt, &member.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("family member", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get family member")
	}

	return member, nil
}

// Update persists changes to a family member
func (r *Repository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE family_members SET
			name = $3, relationship = $4, date_of_birth = $5, gender = $6,
			notes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		member.ID, member.UserID, member.Name, member.Relationship,
		member.DateOfBirth, member.Gender, member.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update family member")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("family member", member.ID.String())
	}

	return nil
}

// Delete removes a family member owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM family_members WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete family member")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("family member", id.String())
	}

	return nil
}

// List lists family members for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Member, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argNum := 2

	if filter.Relationship != nil {
		conditions = append(conditions, fmt.Sprintf("relationship = $%d", argNum))
		args = append(args, *filter.Relationship)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, name, relationship, date_of_birth, gender, notes,
			created_at, updated_at
		FROM family_members
		WHERE %s
		ORDER BY name`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list family members")
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var member Member
		err := rows.Scan(
			&member.ID, &member.UserID, &member.Name, &member.Relationship,
			&member.DateOfBirth, &member.Gender, &member.Notes,
			&member.CreatedAt, &member.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan family member")
		}
		members = append(members, member)
	}

	return members, nil
}
