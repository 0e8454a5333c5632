// internal/domain/models/moodboard.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborator roles.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Collaborator invitation statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Message types.
const (
	MessageText   = "text"
	MessageSystem = "system"
)

// SystemSenderName is the sender name stamped on system messages.
const SystemSenderName = "System"

// MoodBoard is a collaborative travel-inspiration board.
//
// NOTE:
//   - Collaborators and messages are not embedded on the board.
//     They live in the board_members and board_messages collections.
//   - Version is bumped on every content update and used for
//     compare-and-swap writes.
//   - MessageSeq is the last sequence number handed to a message on
//     this board.
type MoodBoard struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Title          string         `bson:"title" json:"title"`
	TitleCI        string         `bson:"title_ci" json:"-"`
	Description    string         `bson:"description" json:"description"`
	ColorPalette   []string       `bson:"color_palette" json:"color_palette"`
	Themes         []string       `bson:"themes" json:"themes"`
	Activities     []string       `bson:"activities" json:"activities"`
	Accommodations []string       `bson:"accommodations" json:"accommodations"`
	Dining         []string       `bson:"dining" json:"dining"`
	Vibe           string         `bson:"vibe" json:"vibe"`
	Elements       []BoardElement `bson:"elements" json:"elements"`
	Settings       map[string]any `bson:"settings,omitempty" json:"settings,omitempty"`
	Metadata       map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IsPublic       bool           `bson:"is_public" json:"is_public"`

	Version    int64 `bson:"version" json:"version"`
	MessageSeq int64 `bson:"message_seq" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BoardElement is a free-form item placed on a board canvas.
type BoardElement struct {
	Type    string  `bson:"type" json:"type"`
	Content string  `bson:"content" json:"content"`
	X       float64 `bson:"x" json:"x"`
	Y       float64 `bson:"y" json:"y"`
}

// Collaborator is a user's membership on a board.
// Exactly one document per (board_id, user_id) and per (board_id, email).
type Collaborator struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BoardID   primitive.ObjectID  `bson:"board_id" json:"board_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Email     string              `bson:"email" json:"email"`
	Name      string              `bson:"name" json:"name"`
	Avatar    string              `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role      string              `bson:"role" json:"role"`     // owner | editor | viewer
	Status    string              `bson:"status" json:"status"` // pending | accepted | declined
	InvitedBy *primitive.ObjectID `bson:"invited_by,omitempty" json:"invited_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BoardMessage is one entry of a board's append-only message log.
// Seq is strictly increasing per board.
type BoardMessage struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BoardID    primitive.ObjectID  `bson:"board_id" json:"board_id"`
	Seq        int64               `bson:"seq" json:"seq"`
	SenderID   *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	SenderName string              `bson:"sender_name" json:"sender_name"`
	Text       string              `bson:"text" json:"text"`
	Type       string              `bson:"type" json:"type"` // text | system
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
