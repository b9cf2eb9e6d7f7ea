package followup

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Repository provides database operations for follow-up tasks
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new follow-up repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, user_id, family_member_id, condition_id, contact_id,
	referral_id, parent_task_id, purpose, description, trigger_date,
	trigger_time, status, priority, notification_enabled, completed_at,
	created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.FamilyMemberID, &t.ConditionID, &t.ContactID,
		&t.ReferralID, &t.ParentTaskID, &t.Purpose, &t.Description, &t.TriggerDate,
		&t.TriggerTime, &t.Status, &t.Priority, &t.NotificationEnabled, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// checkLinks verifies that referenced records exist and belong to the owner
func (r *Repository) checkLinks(ctx context.Context, t *Task) error {
	links := []struct {
		table string
		field string
		id    types.ID
	}{
		{"family_members", "familyMemberId", t.FamilyMemberID},
		{"conditions", "conditionId", t.ConditionID},
		{"medical_contacts", "contactId", t.ContactID},
		{"medical_referrals", "referralId", t.ReferralID},
		{"follow_up_tasks", "parentTaskId", t.ParentTaskID},
	}

	for _, link := range links {
		if link.id.IsZero() {
			continue
		}

		var exists bool
		query := fmt.Sprintf(
			`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, link.table)
		if err := r.pool.QueryRow(ctx, query, link.id, t.UserID).Scan(&exists); err != nil {
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

// Create inserts a new follow-up task
func (r *Repository) Create(ctx context.Context, t *Task) error {
	if err := r.checkLinks(ctx, t); err != nil {
		return err
	}

	query := `
		INSERT INTO follow_up_tasks (
			id, user_id, family_member_id, condition_id, contact_id,
			referral_id, parent_task_id, purpose, description, trigger_date,
			trigger_time, status, priority, notification_enabled, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.FamilyMemberID, t.ConditionID, t.ContactID,
		t.ReferralID, t.ParentTaskID, t.Purpose, t.Description, t.TriggerDate,
		t.TriggerTime, t.Status, t.Priority, t.NotificationEnabled, t.CompletedAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create follow-up task")
	}

	return nil
}

// Get retrieves a follow-up task owned by the given user
func (r *Repository) Get(ctx context.Context, id, userID types.ID) (*Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM follow_up_tasks
		WHERE id = $1 AND user_id = $2`, taskColumns)

	t, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("follow-up task", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get follow-up task")
	}

	return t, nil
}

// Update persists changes to a follow-up task
func (r *Repository) Update(ctx context.Context, t *Task) error {
	if err := r.checkLinks(ctx, t); err != nil {
		return err
	}

	query := `
		UPDATE follow_up_tasks SET
			family_member_id = $3, condition_id = $4, contact_id = $5,
			referral_id = $6, parent_task_id = $7, purpose = $8,
			description = $9, trigger_date = $10, trigger_time = $11,
			status = $12, priority = $13, notification_enabled = $14,
			completed_at = $15, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.FamilyMemberID, t.ConditionID, t.ContactID,
		t.ReferralID, t.ParentTaskID, t.Purpose, t.Description, t.TriggerDate,
		t.TriggerTime, t.Status, t.Priority, t.NotificationEnabled, t.CompletedAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update follow-up task")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("follow-up task", t.ID.String())
	}

	return nil
}

// Delete removes a follow-up task owned by the given user
func (r *Repository) Delete(ctx context.Context, id, userID types.ID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM follow_up_tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete follow-up task")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("follow-up task", id.String())
	}

	return nil
}

// List lists follow-up tasks for a user with optional filters
func (r *Repository) List(ctx context.Context, userID types.ID, filter ListFilter) ([]Task, error) {
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

	if filter.DaysAhead > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"trigger_date <= CURRENT_DATE + $%d::int", argNum))
		args = append(args, filter.DaysAhead)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM follow_up_tasks
		WHERE %s
		ORDER BY trigger_date, priority DESC`, taskColumns, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list follow-up tasks")
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan follow-up task")
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

// ListChildren lists the sub-tasks of a parent task
func (r *Repository) ListChildren(ctx context.Context, parentID, userID types.ID) ([]Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM follow_up_tasks
		WHERE parent_task_id = $1 AND user_id = $2
		ORDER BY trigger_date`, taskColumns)

	rows, err := r.pool.Query(ctx, query, parentID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list child tasks")
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan child task")
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}
