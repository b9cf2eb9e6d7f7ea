package intake

import (
	"encoding/json"
	"strings"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Normalize canonicalizes a parsed item: strings are trimmed, blank or
// whitespace-only foreign keys become absent, dates are coerced to ISO form,
// and per-type required fields are checked syntactically. Referential
// existence is not checked here; that happens at materialization.
func Normalize(item ParsedItem) (ParsedItem, error) {
	item.FamilyMemberName = strings.TrimSpace(item.FamilyMemberName)

	details := map[string]string{}

	var payload any
	switch item.Type {
	case ItemTypeContact:
		payload = normalizeContact(item.Data, details)
	case ItemTypeReferral:
		payload = normalizeReferral(item.Data, details)
	case ItemTypeFollowUp:
		payload = normalizeFollowUp(item.Data, details)
	case ItemTypeCondition:
		payload = normalizeCondition(item.Data, details)
	case ItemTypeMedication:
		payload = normalizeMedication(item.Data, details)
	default:
		return item, errors.Validation("validation failed", map[string]string{
			"type": "unknown item type",
		})
	}

	if len(details) > 0 {
		return item, errors.Validation("validation failed", details)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return item, errors.Wrap(err, "failed to encode normalized item")
	}
	item.Data = data

	return item, nil
}

func normalizeContact(raw json.RawMessage, details map[string]string) *ContactPayload {
	var p ContactPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		details["data"] = "malformed contact payload"
		return nil
	}

	p.FamilyMemberID = normalizeLink("familyMemberId", p.FamilyMemberID, details)
	p.Name = strings.TrimSpace(p.Name)
	p.Role = strings.TrimSpace(p.Role)
	p.Specialty = strings.TrimSpace(p.Specialty)
	p.Clinic = strings.TrimSpace(p.Clinic)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.Address = strings.TrimSpace(p.Address)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Name == "" {
		details["name"] = "name is required"
	}

	return &p
}

func normalizeReferral(raw json.RawMessage, details map[string]string) *ReferralPayload {
	var p ReferralPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		details["data"] = "malformed referral payload"
		return nil
	}

	p.FamilyMemberID = normalizeLink("familyMemberId", p.FamilyMemberID, details)
	p.ConditionID = normalizeLink("conditionId", p.ConditionID, details)
	p.SenderContactID = normalizeLink("senderContactId", p.SenderContactID, details)
	p.ReferredToContactID = normalizeLink("referredToContactId", p.ReferredToContactID, details)
	p.Type = strings.TrimSpace(p.Type)
	p.ReferredTo = strings.TrimSpace(p.ReferredTo)
	p.Reason = strings.TrimSpace(p.Reason)
	p.Status = strings.TrimSpace(p.Status)
	p.Urgency = strings.TrimSpace(p.Urgency)
	p.DateSent = normalizeDate("dateSent", p.DateSent, details)
	p.AppointmentDate = normalizeDate("appointmentDate", p.AppointmentDate, details)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.ReferredTo == "" {
		details["referredTo"] = "referredTo is required"
	}

	return &p
}

func normalizeFollowUp(raw json.RawMessage, details map[string]string) *FollowUpPayload {
	var p FollowUpPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		details["data"] = "malformed followUp payload"
		return nil
	}

	p.FamilyMemberID = normalizeLink("familyMemberId", p.FamilyMemberID, details)
	p.ConditionID = normalizeLink("conditionId", p.ConditionID, details)
	p.ContactID = normalizeLink("contactId", p.ContactID, details)
	p.ReferralID = normalizeLink("referralId", p.ReferralID, details)
	p.ParentTaskID = normalizeLink("parentTaskId", p.ParentTaskID, details)
	p.Purpose = strings.TrimSpace(p.Purpose)
	p.Description = strings.TrimSpace(p.Description)
	p.TriggerDate = normalizeDate("triggerDate", p.TriggerDate, details)
	p.TriggerTime = strings.TrimSpace(p.TriggerTime)
	p.Status = strings.TrimSpace(p.Status)
	p.Priority = strings.TrimSpace(p.Priority)

	return &p
}

func normalizeCondition(raw json.RawMessage, details map[string]string) *ConditionPayload {
	var p ConditionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		details["data"] = "malformed condition payload"
		return nil
	}

	p.FamilyMemberID = normalizeLink("familyMemberId", p.FamilyMemberID, details)
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.TrimSpace(p.Type)
	p.Status = strings.TrimSpace(p.Status)
	p.Severity = strings.TrimSpace(p.Severity)
	p.DiagnosedDate = normalizeDate("diagnosedDate", p.DiagnosedDate, details)
	p.ResolvedDate = normalizeDate("resolvedDate", p.ResolvedDate, details)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Name == "" {
		details["name"] = "name is required"
	}

	return &p
}

func normalizeMedication(raw json.RawMessage, details map[string]string) *MedicationPayload {
	var p MedicationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		details["data"] = "malformed medication payload"
		return nil
	}

	p.FamilyMemberID = normalizeLink("familyMemberId", p.FamilyMemberID, details)
	p.ConditionID = normalizeLink("conditionId", p.ConditionID, details)
	p.PrescribedBy = normalizeLink("prescribedBy", p.PrescribedBy, details)
	p.Name = strings.TrimSpace(p.Name)
	p.Dosage = strings.TrimSpace(p.Dosage)
	p.Frequency = strings.TrimSpace(p.Frequency)
	p.Route = strings.TrimSpace(p.Route)
	p.Status = strings.TrimSpace(p.Status)
	p.StartDate = normalizeDate("startDate", p.StartDate, details)
	p.EndDate = normalizeDate("endDate", p.EndDate, details)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Name == "" {
		details["name"] = "name is required"
	}

	return &p
}

// normalizeLink coerces a blank or whitespace-only id to absent and
// requires any remaining value to be a well-formed id.
func normalizeLink(field, value string, details map[string]string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := types.ParseID(value); err != nil {
		details[field] = "not a valid id"
		return ""
	}
	return value
}

// normalizeDate coerces a date-like string to canonical ISO form
func normalizeDate(field, value string, details map[string]string) string {
	date, err := types.ParseDate(value)
	if err != nil {
		details[field] = "not a valid date"
		return ""
	}
	return date.String()
}
