package intake

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/condition"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/contact"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/family"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/followup"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/medication"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/referral"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// defaultFollowUpPurpose is used when extraction produced a reminder with
// no stated purpose.
const defaultFollowUpPurpose = "Follow up"

// EntityStore is the slice of the entity repositories the materializer
// needs: one create per record type plus the member listing used for name
// resolution.
type EntityStore interface {
	CreateContact(ctx context.Context, c *contact.Contact) error
	CreateReferral(ctx context.Context, rf *referral.Referral) error
	CreateFollowUp(ctx context.Context, t *followup.Task) error
	CreateCondition(ctx context.Context, c *condition.Condition) error
	CreateMedication(ctx context.Context, m *medication.Medication) error
	ListFamilyMembers(ctx context.Context, userID types.ID) ([]family.Member, error)
}

// Materializer turns approved parsed items into real records. Items are
// processed independently: one bad item never blocks the rest.
type Materializer struct {
	store EntityStore
}

// NewMaterializer creates a new materializer
func NewMaterializer(store EntityStore) *Materializer {
	return &Materializer{store: store}
}

// SkippedItem records an item that could not be materialized and why
type SkippedItem struct {
	Item   ParsedItem `json:"item"`
	Reason string     `json:"reason"`
}

// CreatedRecords groups materialized records by type
type CreatedRecords struct {
	Contacts    []*contact.Contact       `json:"contacts"`
	Referrals   []*referral.Referral     `json:"referrals"`
	FollowUps   []*followup.Task         `json:"followUps"`
	Conditions  []*condition.Condition   `json:"conditions"`
	Medications []*medication.Medication `json:"medications"`
}

// Result is the outcome of a materialization run
type Result struct {
	Created         CreatedRecords `json:"created"`
	Skipped         []SkippedItem  `json:"skipped"`
	UnresolvedNames []string       `json:"unresolvedNames,omitempty"`
}

// Materialize creates records for the approved items. Each item is
// normalized, its family member name resolved best-effort, and dispatched
// to the matching store create; failures are collected per item.
func (m *Materializer) Materialize(ctx context.Context, userID types.ID, items []ParsedItem) *Result {
	result := &Result{
		Created: CreatedRecords{
			Contacts:    []*contact.Contact{},
			Referrals:   []*referral.Referral{},
			FollowUps:   []*followup.Task{},
			Conditions:  []*condition.Condition{},
			Medications: []*medication.Medication{},
		},
		Skipped: []SkippedItem{},
	}

	resolver := m.buildResolver(ctx, userID)
	unresolved := map[string]bool{}

	for _, item := range items {
		normalized, err := Normalize(item)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedItem{
				Item:   item,
				Reason: skipReason(err),
			})
			continue
		}

		if err := m.materializeItem(ctx, userID, normalized, resolver, unresolved, result); err != nil {
			result.Skipped = append(result.Skipped, SkippedItem{
				Item:   normalized,
				Reason: skipReason(err),
			})
		}
	}

	for name := range unresolved {
		result.UnresolvedNames = append(result.UnresolvedNames, name)
	}
	sort.Strings(result.UnresolvedNames)

	return result
}

// nameResolver maps a lowercased family member name to candidate ids
type nameResolver map[string][]types.ID

// buildResolver loads the user's family members for name resolution.
// Resolution is best-effort: if the listing fails, names simply stay
// unresolved.
func (m *Materializer) buildResolver(ctx context.Context, userID types.ID) nameResolver {
	members, err := m.store.ListFamilyMembers(ctx, userID)
	if err != nil {
		return nameResolver{}
	}

	resolver := nameResolver{}
	for _, member := range members {
		key := strings.ToLower(strings.TrimSpace(member.Name))
		if key == "" {
			continue
		}
		resolver[key] = append(resolver[key], member.ID)
	}
	return resolver
}

// resolveMember fills in a missing familyMemberId from the item's family
// member name when exactly one member matches it case-insensitively. An
// explicit id always wins. Ambiguous or unknown names are recorded.
func resolveMember(existing, name string, resolver nameResolver, unresolved map[string]bool) string {
	if existing != "" || name == "" {
		return existing
	}

	ids := resolver[strings.ToLower(name)]
	if len(ids) == 1 {
		return ids[0].String()
	}

	unresolved[name] = true
	return ""
}

func (m *Materializer) materializeItem(ctx context.Context, userID types.ID, item ParsedItem, resolver nameResolver, unresolved map[string]bool, result *Result) error {
	switch item.Type {
	case ItemTypeContact:
		var p ContactPayload
		if err := decodePayload(item.Data, &p); err != nil {
			return err
		}
		p.FamilyMemberID = resolveMember(p.FamilyMemberID, item.FamilyMemberName, resolver, unresolved)

		c, err := contact.NewContact(userID, contact.CreateContactRequest{
			FamilyMemberID: types.ID(p.FamilyMemberID),
			Name:           p.Name,
			Role:           p.Role,
			Specialty:      p.Specialty,
			Clinic:         p.Clinic,
			Phone:          p.Phone,
			Email:          p.Email,
			Address:        p.Address,
			Notes:          p.Notes,
		})
		if err != nil {
			return err
		}
		if err := m.store.CreateContact(ctx, c); err != nil {
			return err
		}
		result.Created.Contacts = append(result.Created.Contacts, c)

	case ItemTypeReferral:
		var p ReferralPayload
		if err := decodePayload(item.Data, &p); err != nil {
			return err
		}
		p.FamilyMemberID = resolveMember(p.FamilyMemberID, item.FamilyMemberName, resolver, unresolved)

		rf, err := referral.NewReferral(userID, referral.CreateReferralRequest{
			FamilyMemberID:      types.ID(p.FamilyMemberID),
			ConditionID:         types.ID(p.ConditionID),
			SenderContactID:     types.ID(p.SenderContactID),
			ReferredToContactID: types.ID(p.ReferredToContactID),
			Type:                referral.ReferralType(p.Type),
			ReferredTo:          p.ReferredTo,
			Reason:              p.Reason,
			Status:              referral.Status(p.Status),
			Urgency:             referral.Urgency(p.Urgency),
			DateSent:            p.DateSent,
			AppointmentDate:     p.AppointmentDate,
			Notes:               p.Notes,
		})
		if err != nil {
			return err
		}
		if err := m.store.CreateReferral(ctx, rf); err != nil {
			return err
		}
		result.Created.Referrals = append(result.Created.Referrals, rf)

	case ItemTypeFollowUp:
		var p FollowUpPayload
		if err := decodePayload(item.Data, &p); err != nil {
			return err
		}
		p.FamilyMemberID = resolveMember(p.FamilyMemberID, item.FamilyMemberName, resolver, unresolved)
		if p.Purpose == "" {
			p.Purpose = defaultFollowUpPurpose
		}

		t, err := followup.NewTask(userID, followup.CreateTaskRequest{
			FamilyMemberID: types.ID(p.FamilyMemberID),
			ConditionID:    types.ID(p.ConditionID),
			ContactID:      types.ID(p.ContactID),
			ReferralID:     types.ID(p.ReferralID),
			ParentTaskID:   types.ID(p.ParentTaskID),
			Purpose:        p.Purpose,
			Description:    p.Description,
			TriggerDate:    p.TriggerDate,
			TriggerTime:    p.TriggerTime,
			Status:         followup.Status(p.Status),
			Priority:       followup.Priority(p.Priority),
		})
		if err != nil {
			return err
		}
		if err := m.store.CreateFollowUp(ctx, t); err != nil {
			return err
		}
		result.Created.FollowUps = append(result.Created.FollowUps, t)

	case ItemTypeCondition:
		var p ConditionPayload
		if err := decodePayload(item.Data, &p); err != nil {
			return err
		}
		p.FamilyMemberID = resolveMember(p.FamilyMemberID, item.FamilyMemberName, resolver, unresolved)

		c, err := condition.NewCondition(userID, condition.CreateConditionRequest{
			FamilyMemberID: types.ID(p.FamilyMemberID),
			Name:           p.Name,
			Type:           condition.ConditionType(p.Type),
			Status:         condition.Status(p.Status),
			Severity:       p.Severity,
			DiagnosedDate:  p.DiagnosedDate,
			ResolvedDate:   p.ResolvedDate,
			Notes:          p.Notes,
		})
		if err != nil {
			return err
		}
		if err := m.store.CreateCondition(ctx, c); err != nil {
			return err
		}
		result.Created.Conditions = append(result.Created.Conditions, c)

	case ItemTypeMedication:
		var p MedicationPayload
		if err := decodePayload(item.Data, &p); err != nil {
			return err
		}
		p.FamilyMemberID = resolveMember(p.FamilyMemberID, item.FamilyMemberName, resolver, unresolved)

		med, err := medication.NewMedication(userID, medication.CreateMedicationRequest{
			FamilyMemberID: types.ID(p.FamilyMemberID),
			ConditionID:    types.ID(p.ConditionID),
			PrescribedBy:   types.ID(p.PrescribedBy),
			Name:           p.Name,
			Dosage:         p.Dosage,
			Frequency:      p.Frequency,
			Route:          p.Route,
			Status:         medication.Status(p.Status),
			StartDate:      p.StartDate,
			EndDate:        p.EndDate,
			Notes:          p.Notes,
		})
		if err != nil {
			return err
		}
		if err := m.store.CreateMedication(ctx, med); err != nil {
			return err
		}
		result.Created.Medications = append(result.Created.Medications, med)

	default:
		return errors.Validation("validation failed", map[string]string{
			"type": "unknown item type",
		})
	}

	return nil
}

func decodePayload(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Validation("validation failed", map[string]string{
			"data": "malformed payload",
		})
	}
	return nil
}

// skipReason renders an error as a short human-readable reason, folding
// validation field details into the message.
func skipReason(err error) string {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		return err.Error()
	}

	if len(appErr.Details) == 0 {
		return appErr.Message
	}

	fields := make([]string, 0, len(appErr.Details))
	for field, msg := range appErr.Details {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}
