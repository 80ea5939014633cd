package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationType string

const (
	ConversationTypeDirect ConversationType = "direct"
	ConversationTypeGroup  ConversationType = "group"
)

func (ct ConversationType) IsValid() bool {
	switch ct {
	case ConversationTypeDirect, ConversationTypeGroup:
		return true
	}
	return false
}

type Conversation struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type      ConversationType `gorm:"size:20;not null" json:"type"`
	Name      *string          `gorm:"size:255" json:"name"`
	ProjectID *uuid.UUID       `gorm:"type:uuid" json:"project_id"`
	CompanyID *uuid.UUID       `gorm:"type:uuid;index" json:"company_id"`
	CreatedBy *uuid.UUID       `gorm:"type:uuid" json:"created_by"`

	// DirectKey is the normalized participant pair for direct conversations
	// (nil for groups). The unique index is what makes create-or-reuse safe
	// under concurrent creators of the same pair.
	DirectKey *string `gorm:"size:80;uniqueIndex" json:"-"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"-"`
	Messages     []Message                 `gorm:"foreignKey:ConversationID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Conversation) BeforeSave(tx *gorm.DB) error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid conversation type: %s", c.Type)
	}
	return nil
}

// DirectConversationKey builds the order-independent dedup key for a user pair.
func DirectConversationKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

type ConversationParticipant struct {
	ConversationID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"conversation_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	LastReadAt     *time.Time `json:"last_read_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
