package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post store operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error
	Like(ctx context.Context, postID, userID primitive.ObjectID) error
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) error
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	GetPostsByAuthors(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB. It also touches
// the users collection so that a like toggle updates both sides of the
// relationship in one operation.
type MongoPostRepository struct {
	posts *mongo.Collection
	users *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		posts: db.Collection("posts"),
		users: db.Collection("users"),
	}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.posts.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by hex id from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	err = r.posts.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by id from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment appends a comment to the post's embedded comment sequence,
// preserving insertion order.
func (r *MongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Like adds the user to the post's like set, then the post to the user's
// likedPosts set. The two writes are not transactional; a failure of the
// second is reported with the first already applied.
func (r *MongoPostRepository) Like(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"likes": userID}})
	if err != nil {
		return fmt.Errorf("updating post likes: %w", err)
	}
	_, err = r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"likedPosts": postID}})
	if err != nil {
		return fmt.Errorf("post likes updated but user likedPosts failed: %w", err)
	}
	return nil
}

// Unlike removes the user from the post's like set and the post from the
// user's likedPosts set, with the same partial-failure reporting as Like.
func (r *MongoPostRepository) Unlike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return fmt.Errorf("updating post likes: %w", err)
	}
	_, err = r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"likedPosts": postID}})
	if err != nil {
		return fmt.Errorf("post likes updated but user likedPosts failed: %w", err)
	}
	return nil
}

// GetAllPosts retrieves every post newest-first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

// GetPostsByIDs retrieves the posts whose id is in ids
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetPostsByAuthor retrieves the posts authored by userID newest-first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// GetPostsByAuthors retrieves the posts authored by any of userIDs
// newest-first
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	if userIDs == nil {
		userIDs = []primitive.ObjectID{}
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": userIDs}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
