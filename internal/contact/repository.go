package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for medical contacts
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new contact repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// checkLinks verifies that referenced records exist and belong to the owner
func (r *Repository) checkLinks(ctx context.Context, c *Contact) error {
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

// Create inserts a new contact
func (r *Repository) Create(ctx context.Context, c *Contact) error {
	if err := r.checkLinks(ctx, c); err != nil {
		return err
	}

	query := `
		INSERT INTO medical_contacts (
			id, user_id, family_member_id, name, role, specialty,
			clinic, phone, email, address, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.FamilyMemberID, c.Name, c.Role, c.Specialty,
		c.Clinic, c.Phone, c.Email, c.Address, c.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create contact")
	}

	return nil
}

// Get retrieves a contact owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Contact, error) {
	query := `
		SELECT id, user_id, family_member_id, name, role, specialty,
			clinic, phone, email, address, notes, created_at, updated_at
		FROM medical_contacts
		WHERE id = $1 AND user_id = $2`

	c := &Contact{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.FamilyMemberID, &c.Name, &c.Role, &c.Specialty,
		&c.Clinic, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("contact", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contact")
	}

	return c, nil
}

// Update persists changes to a contact
func (r *Repository) Update(ctx context.Context, c *Contact) error {
	if err := r.checkLinks(ctx, c); err != nil {
		return err
	}

	query := `
		UPDATE medical_contacts SET
			family_member_id = $3, name = $4, role = $5, specialty = $6,
			clinic = $7, phone = $8, email = $9, address = $10, notes = $11,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.FamilyMemberID, c.Name, c.Role, c.Specialty,
		c.Clinic, c.Phone, c.Email, c.Address, c.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update contact")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("contact", c.ID.String())
	}

	return nil
}

// Delete removes a contact owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM medical_contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete contact")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("contact", id.String())
	}

	return nil
}

// List lists contacts for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Contact, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argNum := 2

	if filter.FamilyMemberID != nil {
		conditions = append(conditions, fmt.Sprintf("family_member_id = $%d", argNum))
		args = append(args, *filter.FamilyMemberID)
		argNum++
	}

	if filter.Specialty != "" {
		conditions = append(conditions, fmt.Sprintf("specialty ILIKE $%d", argNum))
		args = append(args, filter.Specialty)
		argNum++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR clinic ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, family_member_id, name, role, specialty,
			clinic, phone, email, address, notes, created_at, updated_at
		FROM medical_contacts
		WHERE %s
		ORDER BY name`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		err := rows.Scan(
			&c.ID, &c.UserID, &c.FamilyMemberID, &c.Name, &c.Role, &c.Specialty,
			&c.Clinic, &c.Phone, &c.Email, &c.Address, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan contact")
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}
