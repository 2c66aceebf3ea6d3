package models

import (
	"time"

	authUtils "fixmycity-be/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// SetPassword hashes plain and stores the hash. The raw password is never
// persisted.
func (u *User) SetPassword(plain string) error {
	hashed, err := authUtils.HashPassword(plain)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	return authUtils.CheckPassword(candidate, u.HashedPassword)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
