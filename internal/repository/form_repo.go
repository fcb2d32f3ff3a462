package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"campusforms/internal/model"
)

// FormRepo handles MongoDB operations for form schemas
type FormRepo interface {
	Create(ctx context.Context, form *model.Form) (string, error)
	GetByID(ctx context.Context, id string) (*model.Form, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*model.Form, error)
	Update(ctx context.Context, form *model.Form) error
	Delete(ctx context.Context, id string) error
}

type formRepo struct {
	collection *mongo.Collection
}

// NewFormRepo creates a new form repository
func NewFormRepo(db *mongo.Database) FormRepo {
	return &formRepo{
		collection: db.Collection("forms"),
	}
}

func (r *formRepo) Create(ctx context.Context, form *model.Form) (string, error) {
	form.CreatedAt = time.Now()
	form.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, form)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *formRepo) GetByID(ctx context.Context, id string) (*model.Form, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var form model.Form
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	form.ID = id
	return &form, nil
}

func (r *formRepo) GetByOwner(ctx context.Context, ownerID string) ([]*model.Form, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var forms []*model.Form
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepo) Update(ctx context.Context, form *model.Form) error {
	oid, err := primitive.ObjectIDFromHex(form.ID)
	if err != nil {
		return err
	}
	form.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"title":       form.Title,
		"description": form.Description,
		"questions":   form.Questions,
		"opensAt":     form.OpensAt,
		"closesAt":    form.ClosesAt,
		"published":   form.Published,
		"updatedAt":   form.UpdatedAt,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *formRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
