package referral

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for referrals
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new referral repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// checkLinks verifies that referenced records exist and belong to the owner
func (r *Repository) checkLinks(ctx context.Context, rf *Referral) error {
	links := []struct {
		table string
		field string
		id    types.ID
	}{
		{"family_members", "familyMemberId", rf.FamilyMemberID},
		{"conditions", "conditionId", rf.ConditionID},
		{"medical_contacts", "senderContactId", rf.SenderContactID},
		{"medical_contacts", "referredToContactId", rf.ReferredToContactID},
	}

	for _, link := range links {
		if link.id.IsZero() {
			continue
		}

		var exists bool
		query := fmt.Sprintf(
			`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, link.table)
		if err := r.pool.QueryRow(ctx, query, link.id, rf.UserID).Scan(&exists); err != nil {
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

// Create inserts a new referral
func (r *Repository) Create(ctx context.Context, rf *Referral) error {
	if err := r.checkLinks(ctx, rf); err != nil {
		return err
	}

	query := `
		INSERT INTO medical_referrals (
			id, user_id, family_member_id, condition_id,
			sender_contact_id, referred_to_contact_id,
			type, referred_to, reason, status, urgency,
			date_sent, appointment_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		rf.ID, rf.UserID, rf.FamilyMemberID, rf.ConditionID,
		rf.SenderContactID, rf.ReferredToContactID,
		rf.Type, rf.ReferredTo, rf.Reason, rf.Status, rf.Urgency,
		rf.DateSent, rf.AppointmentDate, rf.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create referral")
	}

	return nil
}

// Get retrieves a referral owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Referral, error) {
	query := `
		SELECT id, user_id, family_member_id, condition_id,
			sender_contact_id, referred_to_contact_id,
			type, referred_to, reason, status, urgency,
			date_sent, appointment_date, notes, created_at, updated_at
		FROM medical_referrals
		WHERE id = $1 AND user_id = $2`

	rf := &Referral{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&rf.ID, &rf.UserID, &rf.FamilyMemberID, &rf.ConditionID,
		&rf.SenderContactID, &rf.ReferredToContactID,
		&rf.Type, &rf.ReferredTo, &rf.Reason, &rf.Status, &rf.Urgency,
		&rf.DateSent, &rf.AppointmentDate, &rf.Notes, &rf.CreatedAt, &rf.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("referral", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get referral")
	}

	return rf, nil
}

// Update persists changes to a referral
func (r *Repository) Update(ctx context.Context, rf *Referral) error {
	if err := r.checkLinks(ctx, rf); err != nil {
		return err
	}

	query := `
		UPDATE medical_referrals SET
			family_member_id = $3, condition_id = $4,
			sender_contact_id = $5, referred_to_contact_id = $6,
			type = $7, referred_to = $8, reason = $9, status = $10,
			urgency = $11, date_sent = $12, appointment_date = $13, notes = $14,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		rf.ID, rf.UserID, rf.FamilyMemberID, rf.ConditionID,
		rf.SenderContactID, rf.ReferredToContactID,
		rf.Type, rf.ReferredTo, rf.Reason, rf.Status, rf.Urgency,
		rf.DateSent, rf.AppointmentDate, rf.Notes,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update referral")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("referral", rf.ID.String())
	}

	return nil
}

// Delete removes a referral owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM medical_referrals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete referral")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("referral", id.String())
	}

	return nil
}

// List lists referrals for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Referral, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argNum := 2

	if filter.FamilyMemberID != nil {
		conditions = append(conditions, fmt.Sprintf("family_member_id = $%d", argNum))
		args = append(args, *filter.FamilyMemberID)
		argNum++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argNum))
		args = append(args, *filter.Type)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, family_member_id, condition_id,
			sender_contact_id, referred_to_contact_id,
			type, referred_to, reason, status, urgency,
			date_sent, appointment_date, notes, created_at, updated_at
		FROM medical_referrals
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list referrals")
	}
	defer rows.Close()

	var list []Referral
	for rows.Next() {
		var rf Referral
		err := rows.Scan(
			&rf.ID, &rf.UserID, &rf.FamilyMemberID, &rf.ConditionID,
			&rf.SenderContactID, &rf.ReferredToContactID,
			&rf.Type, &rf.ReferredTo, &rf.Reason, &rf.Status, &rf.Urgency,
			&rf.DateSent, &rf.AppointmentDate, &rf.Notes, &rf.CreatedAt, &rf.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan referral")
		}
		list = append(list, rf)
	}

	return list, nil
}
