package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusforms/internal/model"
)

// ResponseRepo handles MongoDB operations for submitted form responses
type ResponseRepo interface {
	Create(ctx context.Context, resp *model.FormResponse) (string, error)
	GetByID(ctx context.Context, id string) (*model.FormResponse, error)
	GetByForm(ctx context.Context, formID string) ([]*model.FormResponse, error)
	HasSubmitted(ctx context.Context, formID, studentEmail string) (bool, error)
	CountByForm(ctx context.Context, formID string) (int64, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, resp *model.FormResponse) (string, error) {
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, resp)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	resp.ID = oid.Hex()
	return resp.ID, nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.FormResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var resp model.FormResponse
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&resp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp.ID = id
	return &resp, nil
}

func (r *responseRepo) GetByForm(ctx context.Context, formID string) ([]*model.FormResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.FormResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) HasSubmitted(ctx context.Context, formID, studentEmail string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"formId": formID, "studentEmail": studentEmail}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *responseRepo) CountByForm(ctx context.Context, formID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"formId": formID})
}
