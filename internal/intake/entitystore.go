package intake

import (
	"context"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/condition"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/contact"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/family"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/followup"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/medication"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/referral"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// RepositoryEntityStore adapts the entity repositories to the EntityStore
// the materializer needs.
type RepositoryEntityStore struct {
	Family      *family.Repository
	Contacts    *contact.Repository
	Conditions  *condition.Repository
	Medications *medication.Repository
	Referrals   *referral.Repository
	FollowUps   *followup.Repository
}

var _ EntityStore = (*RepositoryEntityStore)(nil)

func (s *RepositoryEntityStore) CreateContact(ctx context.Context, c *contact.Contact) error {
	return s.Contacts.Create(ctx, c)
}

func (s *RepositoryEntityStore) CreateReferral(ctx context.Context, rf *referral.Referral) error {
	return s.Referrals.Create(ctx, rf)
}

func (s *RepositoryEntityStore) CreateFollowUp(ctx context.Context, t *followup.Task) error {
	return s.FollowUps.Create(ctx, t)
}

func (s *RepositoryEntityStore) CreateCondition(ctx context.Context, c *condition.Condition) error {
	return s.Conditions.Create(ctx, c)
}

func (s *RepositoryEntityStore) CreateMedication(ctx context.Context, m *medication.Medication) error {
	return s.Medications.Create(ctx, m)
}

func (s *RepositoryEntityStore) ListFamilyMembers(ctx context.Context, userID types.ID) ([]family.Member, error) {
	return s.Family.List(ctx, userID, family.ListFilter{})
}
