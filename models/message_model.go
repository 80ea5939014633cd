package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletedMessageText replaces the body of a soft-deleted message. The row is
// kept so conversation ordering and history survive the deletion.
const DeletedMessageText = "[Message deleted]"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

type Message struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID   `gorm:"type:uuid;not null" json:"sender_id"`
	MessageText    string      `gorm:"type:text;not null" json:"message_text"`
	MessageType    MessageType `gorm:"size:20;not null" json:"message_type"`
	FileURL        *string     `gorm:"type:text" json:"file_url"`
	FileName       *string     `gorm:"size:255" json:"file_name"`
	FileSize       *int64      `json:"file_size"`
	IsEdited       bool        `gorm:"default:false" json:"is_edited"`
	IsDeleted      bool        `gorm:"default:false" json:"is_deleted"`
	EditedAt       *time.Time  `json:"edited_at"`

	Sender       User         `gorm:"foreignKey:SenderID" json:"-"`
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MessageType == "" {
		m.MessageType = MessageTypeText
	}
	return nil
}

// MessageRead is a per-user read receipt. The composite primary key keeps
// receipts unique per (message, user) so backfills can insert blindly.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ReadAt    time.Time `gorm:"not null" json:"read_at"`

	Message Message `gorm:"foreignKey:MessageID" json:"-"`
	Reader  User    `gorm:"foreignKey:UserID" json:"-"`
}
