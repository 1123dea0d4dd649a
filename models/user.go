package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a system user
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Role      string             `json:"role" bson:"role"` // admin, user
	Status    int                `json:"status" bson:"status"` // 1 enabled, 0 disabled
	LastLogin time.Time          `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Collection names for users
const (
	CollectionUsers = "users"
)
