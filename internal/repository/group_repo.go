package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"campusforms/internal/model"
)

// GroupRepo handles MongoDB operations for shared groups and the claimable
// student roster. The claim is a compare-and-swap over roster documents, so
// two students racing for the same member lose deterministically on the
// server no matter what their clients believed.
type GroupRepo interface {
	GetGroup(ctx context.Context, formID, questionID string) (*model.Group, error)
	AvailableStudents(ctx context.Context, formID string) ([]string, error)
	ValidateMembers(ctx context.Context, formID string, members []string) (*model.MemberValidation, error)
	ClaimMembers(ctx context.Context, formID, questionID, filledBy string, members []string) (*model.MemberValidation, error)
	AddToRoster(ctx context.Context, students []model.RosterStudent) error
}

type groupRepo struct {
	groups *mongo.Collection
	roster *mongo.Collection
}

// NewGroupRepo creates a new group repository
func NewGroupRepo(db *mongo.Database) GroupRepo {
	return &groupRepo{
		groups: db.Collection("groups"),
		roster: db.Collection("roster"),
	}
}

func (r *groupRepo) GetGroup(ctx context.Context, formID, questionID string) (*model.Group, error) {
	var g model.Group
	err := r.groups.FindOne(ctx, bson.M{"formId": formID, "questionId": questionID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) AvailableStudents(ctx context.Context, formID string) ([]string, error) {
	cursor, err := r.roster.Find(ctx, bson.M{"formId": formID, "claimed": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []model.RosterStudent
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(students))
	for _, s := range students {
		names = append(names, s.Name)
	}
	return names, nil
}

func (r *groupRepo) ValidateMembers(ctx context.Context, formID string, members []string) (*model.MemberValidation, error) {
	unavailable, err := r.claimedAmong(ctx, formID, members)
	if err != nil {
		return nil, err
	}
	if len(unavailable) > 0 {
		return &model.MemberValidation{
			Available:          false,
			UnavailableMembers: unavailable,
			Message:            fmt.Sprintf("Some students were already claimed by another group: %v", unavailable),
		}, nil
	}
	return &model.MemberValidation{Available: true}, nil
}

// ClaimMembers atomically flips every selected roster entry from unclaimed to
// claimed. If fewer documents flip than members were selected, someone else
// won the race for at least one of them: the partial claim is rolled back and
// the current unavailable list is reported.
func (r *groupRepo) ClaimMembers(ctx context.Context, formID, questionID, filledBy string, members []string) (*model.MemberValidation, error) {
	groupID := primitive.NewObjectID().Hex()

	res, err := r.roster.UpdateMany(ctx,
		bson.M{"formId": formID, "name": bson.M{"$in": members}, "claimed": false},
		bson.M{"$set": bson.M{"claimed": true, "claimedBy": groupID}},
	)
	if err != nil {
		return nil, err
	}

	if res.ModifiedCount != int64(len(members)) {
		// lost the race for at least one member: release what we grabbed
		if _, rbErr := r.roster.UpdateMany(ctx,
			bson.M{"claimedBy": groupID},
			bson.M{"$set": bson.M{"claimed": false, "claimedBy": ""}},
		); rbErr != nil {
			return nil, fmt.Errorf("claim rollback failed: %w", rbErr)
		}
		unavailable, err := r.claimedAmong(ctx, formID, members)
		if err != nil {
			return nil, err
		}
		return &model.MemberValidation{
			Available:          false,
			UnavailableMembers: unavailable,
			Message:            fmt.Sprintf("Some students were already claimed by another group: %v", unavailable),
		}, nil
	}

	group := &model.Group{
		ID:         groupID,
		FormID:     formID,
		QuestionID: questionID,
		Members:    members,
		FilledBy:   filledBy,
		FilledAt:   time.Now(),
	}
	if _, err := r.groups.InsertOne(ctx, group); err != nil {
		return nil, err
	}
	return &model.MemberValidation{Available: true}, nil
}

func (r *groupRepo) AddToRoster(ctx context.Context, students []model.RosterStudent) error {
	if len(students) == 0 {
		return nil
	}
	docs := make([]interface{}, len(students))
	for i, s := range students {
		docs[i] = s
	}
	_, err := r.roster.InsertMany(ctx, docs)
	return err
}

func (r *groupRepo) claimedAmong(ctx context.Context, formID string, members []string) ([]string, error) {
	cursor, err := r.roster.Find(ctx, bson.M{"formId": formID, "name": bson.M{"$in": members}, "claimed": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var claimed []model.RosterStudent
	if err := cursor.All(ctx, &claimed); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(claimed))
	for _, s := range claimed {
		names = append(names, s.Name)
	}
	return names, nil
}
