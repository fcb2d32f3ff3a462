package service

import (
	"context"
	"fmt"
	"log"

	"campusforms/internal/model"
	"campusforms/internal/repository"
)

const (
	defaultMinGroupSize = 3
	defaultMaxGroupSize = 5
)

// GroupService coordinates the group selection question type: live
// availability reads, selection-size rules, and the server round-trip
// re-validation that is always the last gate before a fresh selection may
// advance. The server is authoritative; a rejection here always wins over
// whatever the client believed.
type GroupService struct {
	groupRepo   repository.GroupRepo
	broadcaster Broadcaster
}

// NewGroupService creates a new group selection coordinator
func NewGroupService(groupRepo repository.GroupRepo) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GroupService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Status fetches the live group selection status for (form, question). It is
// never cached: another student may have filled the group since the last read.
func (s *GroupService) Status(ctx context.Context, formID, questionID string) (*model.GroupSelectionStatus, error) {
	group, err := s.groupRepo.GetGroup(ctx, formID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group status: %w", err)
	}
	if group != nil && len(group.Members) > 0 {
		return &model.GroupSelectionStatus{
			IsFilled:     true,
			GroupMembers: group.Members,
			FilledBy:     group.FilledBy,
		}, nil
	}

	available, err := s.groupRepo.AvailableStudents(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load available students: %w", err)
	}
	count := len(available)
	return &model.GroupSelectionStatus{
		AvailableStudentsCount: &count,
		AvailableStudents:      available,
	}, nil
}

// EffectiveMinimum returns the lower bound actually enforced on a selection.
// When fewer unclaimed candidates remain than the nominal minimum, students
// must select all of them instead of being blocked by an unreachable bound.
func EffectiveMinimum(q *model.Question, status *model.GroupSelectionStatus) int {
	minSize := q.MinGroupSize
	if minSize <= 0 {
		minSize = defaultMinGroupSize
	}
	if status != nil && status.AvailableStudentsCount != nil && *status.AvailableStudentsCount <= minSize {
		return *status.AvailableStudentsCount
	}
	return minSize
}

// CheckSelection applies the local selection-size rules for a fresh (not
// inherited) selection. Bounds failures come back as user-facing reasons
// naming the enforced bound.
func (s *GroupService) CheckSelection(q *model.Question, status *model.GroupSelectionStatus, selected []string) (okRes bool, reason string) {
	maxSize := q.MaxGroupSize
	if maxSize <= 0 {
		maxSize = defaultMaxGroupSize
	}
	effMin := EffectiveMinimum(q, status)

	if len(selected) < effMin {
		return false, fmt.Sprintf("Select at least %d members to form a group", effMin)
	}
	if len(selected) > maxSize {
		return false, fmt.Sprintf("Select at most %d members", maxSize)
	}
	return true, ""
}

// Revalidate is the server round trip performed immediately before advancing
// past a group selection question with a fresh selection: every selected
// member must still be unclaimed. The error return is a transport failure
// (block and retry); an unavailable verdict comes back in the validation.
func (s *GroupService) Revalidate(ctx context.Context, formID string, selected []string) (*model.MemberValidation, error) {
	validation, err := s.groupRepo.ValidateMembers(ctx, formID, selected)
	if err != nil {
		return nil, fmt.Errorf("member validation round trip failed: %w", err)
	}
	return validation, nil
}

// Claim finally commits a fresh selection at submission time. On success the
// fill is broadcast so students still choosing see the group disappear.
func (s *GroupService) Claim(ctx context.Context, formID, questionID, filledBy string, members []string) (*model.MemberValidation, error) {
	validation, err := s.groupRepo.ClaimMembers(ctx, formID, questionID, filledBy, members)
	if err != nil {
		return nil, err
	}
	if validation.Available {
		s.broadcastFilled(ctx, formID, questionID, filledBy, members)
	}
	return validation, nil
}

func (s *GroupService) broadcastFilled(ctx context.Context, formID, questionID, filledBy string, members []string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToForm(formID, "group_filled", map[string]interface{}{
		"questionId": questionID,
		"filledBy":   filledBy,
		"members":    members,
	})
	available, err := s.groupRepo.AvailableStudents(ctx, formID)
	if err != nil {
		log.Printf("availability refresh after claim failed for form %s: %v", formID, err)
		return
	}
	s.broadcaster.BroadcastToForm(formID, "group_availability", map[string]interface{}{
		"availableStudentsCount": len(available),
	})
}
