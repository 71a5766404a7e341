package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a confirmed account
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string        `bson:"name" json:"name"`
	Email         string        `bson:"email" json:"email"`
	PasswordHash  string        `bson:"password,omitempty" json:"-"`
	GoogleID      string        `bson:"googleId,omitempty" json:"-"`
	EmailVerified bool          `bson:"emailVerified" json:"emailVerified"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PendingUser is an unconfirmed signup awaiting OTP verification.
// At most one pending record exists per email; its _id is the tempId
// handed back to the client to correlate verify/resend calls.
type PendingUser struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	OTPHash      string        `bson:"otpHash"`
	OTPExpiry    time.Time     `bson:"otpExpiry"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

// ChatMessage is one saved exchange with an assistant
type ChatMessage struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	Message   string        `bson:"message" json:"message"`
	Response  string        `bson:"response" json:"response"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// Visitor records the first sighting of a client-generated visitor id
type Visitor struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	VisitorID string        `bson:"visitorId"`
	CreatedAt time.Time     `bson:"createdAt"`
}

// VisitorCount is the singleton counter document
type VisitorCount struct {
	ID    bson.ObjectID `bson:"_id,omitempty"`
	Count int64         `bson:"count"`
}

// Feedback is a submitted feedback message, persisted before forwarding
type Feedback struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Message   string        `bson:"message"`
	CreatedAt time.Time     `bson:"createdAt"`
}
