package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document stored in MongoDB. Comments are embedded
// and append-only; likes mirror each liker's likedPosts set.
type Post struct {
	ID        primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user" bson:"user"`
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Img       string               `json:"img,omitempty" bson:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
}

// HasLike reports whether the post's like set contains userID.
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// Comment is owned exclusively by its parent post.
type Comment struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostView is the assembled read model: the owning user and every comment
// author are populated with their password-stripped records.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *User                `json:"user"`
	Text      string               `json:"text,omitempty"`
	Img       string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
}

// CommentView is a comment with its author populated.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *User              `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CreatePostRequest defines the request body for creating a new post. Img is
// a base64 data URI; at least one of Text/Img is required, enforced by the
// handler.
type CreatePostRequest struct {
	Text string `json:"text,omitempty" validate:"omitempty,max=500"`
	Img  string `json:"img,omitempty"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
