package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contactbook/apperr"
	"contactbook/models"
)

// MongoContactStore pushes the owner filter into every query predicate and
// expresses mutations as single find-and-modify operations keyed by
// (id, owner), so a concurrent conflicting write can never target another
// owner's record or leave a torn state.
type MongoContactStore struct {
	col *mongo.Collection
}

func NewMongoContactStore(database *mongo.Database) *MongoContactStore {
	return &MongoContactStore{col: database.Collection("contacts")}
}

func ownerFilter(id, owner string) (bson.M, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, apperr.Validation("Invalid contact id")
	}
	return bson.M{"_id": id, "owner": owner}, nil
}

func (s *MongoContactStore) List(ctx context.Context, owner string) ([]models.Contact, error) {
	cursor, err := s.col.Find(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	contacts := []models.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("decoding contacts: %w", err)
	}
	return contacts, nil
}

func (s *MongoContactStore) Get(ctx context.Context, id, owner string) (*models.Contact, error) {
	filter, err := ownerFilter(id, owner)
	if err != nil {
		return nil, err
	}
	var c models.Contact
	err = s.col.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching contact: %w", err)
	}
	return &c, nil
}

func (s *MongoContactStore) Create(ctx context.Context, owner string, in ContactInput) (*models.Contact, error) {
	c := models.Contact{
		ID:    primitive.NewObjectID().Hex(),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Owner: owner,
	}
	if _, err := s.col.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("inserting contact: %w", err)
	}
	return &c, nil
}

func (s *MongoContactStore) Update(ctx context.Context, id, owner string, in ContactUpdate) (*models.Contact, error) {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Email != nil {
		set["email"] = *in.Email
	}
	if in.Phone != nil {
		set["phone"] = *in.Phone
	}
	return s.findAndUpdate(ctx, id, owner, set)
}

func (s *MongoContactStore) SetFavorite(ctx context.Context, id, owner string, favorite bool) (*models.Contact, error) {
	return s.findAndUpdate(ctx, id, owner, bson.M{"favorite": favorite})
}

func (s *MongoContactStore) Delete(ctx context.Context, id, owner string) (*models.Contact, error) {
	filter, err := ownerFilter(id, owner)
	if err != nil {
		return nil, err
	}
	var c models.Contact
	err = s.col.FindOneAndDelete(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("deleting contact: %w", err)
	}
	return &c, nil
}

func (s *MongoContactStore) findAndUpdate(ctx context.Context, id, owner string, set bson.M) (*models.Contact, error) {
	filter, err := ownerFilter(id, owner)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Contact
	err = s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}
	return &c, nil
}
