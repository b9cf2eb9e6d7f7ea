package medication

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for medications
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new medication repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// checkLinks verifies that referenced records exist and belong to the owner
func (r *Repository) checkLinks(ctx context.Context, m *Medication) error {
	links := []struct {
		table string
		field string
		id    types.ID
	}{
		{"family_members", "familyMemberId", m.FamilyMemberID},
		{"conditions", "conditionId", m.ConditionID},
		{"medical_contacts", "prescribedBy", m.PrescribedBy},
	}

	for _, link := range links {
		if link.id.IsZero() {
			continue
		}

		var exists bool
		query := fmt.Sprintf(
			`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, link.table)
		if err := r.pool.QueryRow(ctx, query, link.id, m.UserID).Scan(&exists); err != nil {
			return errors.Wrap(err, "failed to verify "+link.field+" link")
		}
		if !exists {
			return errors.Validation("validation failed", map[string]string{
				link.field: "referenced record not found",
			})
		}
	}

	return nil
}

// Create inserts a new medication
func (r *Repository) Create(ctx context.Context, m *Medication) error {
	if err := r.checkLinks(ctx, m); err != nil {
		return err
	}

	query := `
		INSERT INTO medications (
			id, user_id, family_member_id, condition_id, prescribed_by,
			name, dosage, frequency, route, status, start_date, end_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.UserID, m.FamilyMemberID, m.ConditionID, m.PrescribedBy,
		m.Name, m.Dosage, m.Frequency, m.Route, m.Status,
		m.StartDate, m.EndDate, m.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create medication")
	}

	return nil
}

// Get retrieves a medication owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Medication, error) {
	query := `
		SELECT id, user_id, family_member_id, condition_id, prescribed_by,
			name, dosage, frequency, route, status, start_date, end_date, notes,
			created_at, updated_at
		FROM medications
		WHERE id = $1 AND user_id = $2`

	m := &Medication{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&m.ID, &m.UserID, &m.FamilyMemberID, &m.ConditionID, &m.PrescribedBy,
		&m.Name, &m.Dosage, &m.Frequency, &m.Route, &m.Status,
		&m.StartDate, &m.EndDate, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("medication", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get medication")
	}

	return m, nil
}

// Update persists changes to a medication
func (r *Repository) Update(ctx context.Context, m *Medication) error {
	if err := r.checkLinks(ctx, m); err != nil {
		return err
	}

	query := `
		UPDATE medications SET
			family_member_id = $3, condition_id = $4, prescribed_by = $5,
			name = $6, dosage = $7, frequency = $8, route = $9, status = $10,
			start_date = $11, end_date = $12, notes = $13, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		m.ID, m.UserID, m.FamilyMemberID, m.ConditionID, m.PrescribedBy,
		m.Name, m.Dosage, m.Frequency, m.Route, m.Status,
		m.StartDate, m.EndDate, m.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update medication")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("medication", m.ID.String())
	}

	return nil
}

// Delete removes a medication owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM medications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete medication")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("medication", id.String())
	}

	return nil
}

// List lists medications for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Medication, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argNum := 2

	if filter.FamilyMemberID != nil {
		conditions = append(conditions, fmt.Sprintf("family_member_id = $%d", argNum))
		args = append(args, *filter.FamilyMemberID)
		argNum++
	}

	if filter.ConditionID != nil {
		conditions = append(conditions, fmt.Sprintf("condition_id = $%d", argNum))
		args = append(args, *filter.ConditionID)
		argNum++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, family_member_id, condition_id, prescribed_by,
			name, dosage, frequency, route, status, start_date, end_date, notes,
			created_at, updated_at
		FROM medications
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list medications")
	}
	defer rows.Close()

	var list []Medication
	for rows.Next() {
		var m Medication
		err := rows.Scan(
			&m.ID, &m.UserID, &m.FamilyMemberID, &m.ConditionID, &m.PrescribedBy,
			&m.Name, &m.Dosage, &m.Frequency, &m.Route, &m.Status,
			&m.StartDate, &m.EndDate, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan medication")
		}
		list = append(list, m)
	}

	return list, nil
}
