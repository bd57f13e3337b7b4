package models

import (
	"time"
)

type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	ActiveToken       *string   `json:"-"`
	AvatarURL         string    `json:"avatarURL"`
	VerificationToken *string   `json:"-"`
	Verified          bool      `json:"verified"`
	Subscription      string    `json:"subscription"`
	CreatedAt         time.Time `json:"created_at"`
}

// Contact IDs are hex ObjectIDs in the Mongo store and UUIDs in the file
// store; both are opaque to callers.
type Contact struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	Favorite bool   `json:"favorite" bson:"favorite"`
	Owner    string `json:"owner" bson:"owner"`
}
