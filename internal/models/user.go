package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document stored in MongoDB. The follow graph and
// liked-posts set are embedded as ObjectID arrays on both sides of each
// relationship.
type User struct {
	ID         primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Username   string               `json:"username" bson:"username"`
	FullName   string               `json:"fullName" bson:"fullName"`
	Email      string               `json:"email" bson:"email"`
	Password   string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Bio        string               `json:"bio" bson:"bio"`
	Link       string               `json:"link" bson:"link"`
	ProfileImg string               `json:"profileImg" bson:"profileImg"`
	CoverImg   string               `json:"coverImg" bson:"coverImg"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	Following  []primitive.ObjectID `json:"following" bson:"following"`
	LikedPosts []primitive.ObjectID `json:"likedPosts" bson:"likedPosts"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
}

// IsFollowing reports whether the user's following set contains id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// HasLiked reports whether the user's likedPosts set contains postID.
func (u *User) HasLiked(postID primitive.ObjectID) bool {
	for _, p := range u.LikedPosts {
		if p == postID {
			return true
		}
	}
	return false
}

// UserCompact is the reduced identity used when populating related records.
type UserCompact struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	ProfileImg string             `json:"profileImg"`
}

// ToCompact returns the reduced identity view of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		Username:   u.Username,
		ProfileImg: u.ProfileImg,
	}
}

// SignupRequest defines the request body for user registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=1,max=30"`
	FullName string `json:"fullName" validate:"required,min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for user authentication
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for profile updates. Omitted or
// empty fields leave the stored value unchanged.
type UpdateUserRequest struct {
	FullName        string `json:"fullName,omitempty" validate:"omitempty,min=1,max=50"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Username        string `json:"username,omitempty" validate:"omitempty,min=1,max=30"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Link            string `json:"link,omitempty"`
	ProfileImg      string `json:"profileImg,omitempty"`
	CoverImg        string `json:"coverImg,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
