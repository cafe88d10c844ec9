package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user directory operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	SampleUsers(ctx context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	user.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by hex id from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetUserByUsername retrieves a user by username from MongoDB
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser overwrites the mutable profile fields of an existing user
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	update := bson.M{
		"$set": bson.M{
			"fullName":   user.FullName,
			"email":      user.Email,
			"username":   user.Username,
			"password":   user.Password,
			"bio":        user.Bio,
			"link":       user.Link,
			"profileImg": user.ProfileImg,
			"coverImg":   user.CoverImg,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow records the relationship on both user documents: the follower is
// pushed onto the target's followers set, then the target onto the
// follower's following set. The two writes are not transactional; a failure
// of the second is reported with the first already applied.
func (r *MongoUserRepository) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{"$push": bson.M{"followers": followerID}})
	if err != nil {
		return fmt.Errorf("updating target followers: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{"$push": bson.M{"following": targetID}})
	if err != nil {
		return fmt.Errorf("target followers updated but follower following failed: %w", err)
	}
	return nil
}

// Unfollow removes the relationship from both user documents, with the same
// partial-failure reporting as Follow.
func (r *MongoUserRepository) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{"$pull": bson.M{"followers": followerID}})
	if err != nil {
		return fmt.Errorf("updating target followers: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{"$pull": bson.M{"following": targetID}})
	if err != nil {
		return fmt.Errorf("target followers updated but follower following failed: %w", err)
	}
	return nil
}

// SampleUsers returns up to size users drawn uniformly at random, excluding
// excludeID. Sampling happens before any follow filtering, so callers may
// end up with fewer eligible users than sampled.
func (r *MongoUserRepository) SampleUsers(ctx context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": excludeID}}}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
