package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := findAll(ctx, r.collection, bson.M{}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := findOne(ctx, r.collection, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches the address case-insensitively; emails are stored lower-cased.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindRefs returns only the id and name of each user.
func (r *UserRepository) FindRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserRef, error) {
	refs := []models.UserRef{}
	if len(ids) == 0 {
		return refs, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	if err := findAll(ctx, r.collection, byIDs(ids), &refs, opts); err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	id, err := insertOne(ctx, r.collection, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) Replace(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return replaceOne(ctx, r.collection, user.ID, user)
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, id)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
