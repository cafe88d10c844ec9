package handlers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes implementing the repository and asset-store interfaces.
// Lookups return copies so handlers must persist through UpdateUser; the
// relationship operations mutate the stored documents like the real
// $push/$pull updates do.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
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
	stored := *user
	f.users[user.ID] = &stored
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	user, ok := f.users[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Follow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	target, ok := f.users[targetID]
	if !ok {
		return repositories.ErrNotFound
	}
	follower, ok := f.users[followerID]
	if !ok {
		return repositories.ErrNotFound
	}
	target.Followers = append(target.Followers, followerID)
	follower.Following = append(follower.Following, targetID)
	return nil
}

func (f *fakeUserRepo) Unfollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	target, ok := f.users[targetID]
	if !ok {
		return repositories.ErrNotFound
	}
	follower, ok := f.users[followerID]
	if !ok {
		return repositories.ErrNotFound
	}
	target.Followers = removeID(target.Followers, followerID)
	follower.Following = removeID(follower.Following, targetID)
	return nil
}

// SampleUsers is deterministic: every user except excludeID in insertion
// order, capped at size.
func (f *fakeUserRepo) SampleUsers(_ context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error) {
	sampled := []models.User{}
	for _, id := range f.order {
		if id == excludeID {
			continue
		}
		sampled = append(sampled, *f.users[id])
		if len(sampled) == size {
			break
		}
	}
	return sampled, nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]*models.Post
	users *fakeUserRepo
	clock time.Time
}

func newFakePostRepo(users *fakeUserRepo) *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[primitive.ObjectID]*models.Post),
		users: users,
		clock: time.Now().Add(-time.Hour),
	}
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	f.clock = f.clock.Add(time.Minute)
	post.CreatedAt = f.clock
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	post, ok := f.posts[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	post, ok := f.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	post.Comments = append(post.Comments, *comment)
	return nil
}

func (f *fakePostRepo) Like(_ context.Context, postID, userID primitive.ObjectID) error {
	post, ok := f.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	user, ok := f.users.users[userID]
	if !ok {
		return fmt.Errorf("post likes updated but user likedPosts failed: %w", repositories.ErrNotFound)
	}
	post.Likes = append(post.Likes, userID)
	user.LikedPosts = append(user.LikedPosts, postID)
	return nil
}

func (f *fakePostRepo) Unlike(_ context.Context, postID, userID primitive.ObjectID) error {
	post, ok := f.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	user, ok := f.users.users[userID]
	if !ok {
		return fmt.Errorf("post likes updated but user likedPosts failed: %w", repositories.ErrNotFound)
	}
	post.Likes = removeID(post.Likes, userID)
	user.LikedPosts = removeID(user.LikedPosts, postID)
	return nil
}

func (f *fakePostRepo) GetAllPosts(_ context.Context) ([]models.Post, error) {
	return f.filter(func(*models.Post) bool { return true }), nil
}

func (f *fakePostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool { return containsID(ids, p.ID) }), nil
}

func (f *fakePostRepo) GetPostsByAuthor(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (f *fakePostRepo) GetPostsByAuthors(_ context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool { return containsID(userIDs, p.UserID) }), nil
}

func (f *fakePostRepo) filter(keep func(*models.Post) bool) []models.Post {
	posts := []models.Post{}
	for _, post := range f.posts {
		if keep(post) {
			posts = append(posts, *post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

type fakeNotificationRepo struct {
	notifications []models.Notification
	nextID        uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) CreateNotification(notification *models.Notification) error {
	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(toID string) ([]models.Notification, error) {
	result := []models.Notification{}
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].ToID == toID {
			result = append(result, f.notifications[i])
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(toID string) error {
	for i := range f.notifications {
		if f.notifications[i].ToID == toID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteAllForRecipient(toID string) error {
	kept := f.notifications[:0]
	for _, n := range f.notifications {
		if n.ToID != toID {
			kept = append(kept, n)
		}
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationRepo) forRecipient(toID string) []models.Notification {
	result := []models.Notification{}
	for _, n := range f.notifications {
		if n.ToID == toID {
			result = append(result, n)
		}
	}
	return result
}

type fakeAssetStore struct {
	uploads   int
	destroyed []string
}

func (f *fakeAssetStore) Upload(_ context.Context, _ string) (string, error) {
	f.uploads++
	return fmt.Sprintf("http://cdn.local/assets/img%d.jpg", f.uploads), nil
}

func (f *fakeAssetStore) Destroy(_ context.Context, assetID string) error {
	f.destroyed = append(f.destroyed, assetID)
	return nil
}
