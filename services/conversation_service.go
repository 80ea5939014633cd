package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateConversationInput struct {
	Type      models.ConversationType
	UserIDs   []uuid.UUID
	Name      *string
	ProjectID *uuid.UUID
	CreatedBy *uuid.UUID
}

// CreateOrReuseConversation creates a conversation with the given participants.
// For a direct conversation between exactly two users it reuses the existing
// one for that pair regardless of participant order; the unique index on
// direct_key makes the check-then-create race safe. The returned bool is true
// when a new conversation was created.
func CreateOrReuseConversation(input CreateConversationInput) (*ConversationView, bool, error) {
	if !input.Type.IsValid() || len(input.UserIDs) == 0 {
		return nil, false, fmt.Errorf("%w: type and userIds are required", ErrInvalidInput)
	}

	// Company is stamped from the first participant. Participants are assumed
	// same-company; a missing user simply leaves the conversation companyless.
	var companyID *uuid.UUID
	if identity, err := ResolveUser(input.UserIDs[0]); err == nil {
		companyID = identity.CompanyID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if input.Type == models.ConversationTypeDirect && len(input.UserIDs) == 2 {
		return createOrReuseDirect(input, companyID)
	}

	conv := models.Conversation{
		Type:      input.Type,
		Name:      input.Name,
		ProjectID: input.ProjectID,
		CompanyID: companyID,
		CreatedBy: input.CreatedBy,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		return addParticipants(tx, conv.ID, input.UserIDs)
	})
	if err != nil {
		return nil, false, err
	}

	view, err := loadConversationView(conv.ID)
	if err != nil {
		return nil, false, err
	}
	return view, true, nil
}

func createOrReuseDirect(input CreateConversationInput, companyID *uuid.UUID) (*ConversationView, bool, error) {
	key := models.DirectConversationKey(input.UserIDs[0], input.UserIDs[1])

	var existing models.Conversation
	err := database.DB.First(&existing, "direct_key = ?", key).Error
	if err == nil {
		view, err := loadConversationView(existing.ID)
		return view, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	conv := models.Conversation{
		Type:      models.ConversationTypeDirect,
		Name:      input.Name,
		ProjectID: input.ProjectID,
		CompanyID: companyID,
		CreatedBy: input.CreatedBy,
		DirectKey: &key,
	}
	lostRace := false
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "direct_key"}},
			DoNothing: true,
		}).Create(&conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent creator of the same pair.
			lostRace = true
			return nil
		}
		return addParticipants(tx, conv.ID, input.UserIDs)
	})
	if err != nil {
		return nil, false, err
	}

	if lostRace {
		if err := database.DB.First(&existing, "direct_key = ?", key).Error; err != nil {
			return nil, false, err
		}
		view, err := loadConversationView(existing.ID)
		return view, false, err
	}

	view, err := loadConversationView(conv.ID)
	if err != nil {
		return nil, false, err
	}
	return view, true, nil
}

// addParticipants inserts membership rows; duplicates are a no-op, not an error.
func addParticipants(tx *gorm.DB, conversationID uuid.UUID, userIDs []uuid.UUID) error {
	for _, userID := range userIDs {
		participant := models.ConversationParticipant{
			ConversationID: conversationID,
			UserID:         userID,
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListConversationsForUser returns every conversation the user is a member of
// and may see under tenant scoping, newest activity first, enriched with the
// last message, the roster and the unread count.
func ListConversationsForUser(userID uuid.UUID) ([]ConversationView, error) {
	identity, err := ResolveUser(userID)
	if err != nil {
		return nil, err
	}

	var conversations []models.Conversation
	err = database.DB.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID).
		Preload("Participants.User").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		if !CanAccessConversation(identity, conv.CompanyID) {
			continue
		}

		view := conversationView(conv)

		lastMessage, err := lastConversationMessage(conv.ID)
		if err != nil {
			return nil, err
		}
		view.LastMessage = lastMessage

		unread, err := UnreadCount(conv.ID, userID)
		if err != nil {
			return nil, err
		}
		view.UnreadCount = unread

		views = append(views, view)
	}
	return views, nil
}

func lastConversationMessage(conversationID uuid.UUID) (*MessageView, error) {
	var message models.Message
	err := database.DB.Preload("Sender").
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Order("created_at DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	view := messageView(message, readStatusSent)
	return &view, nil
}

// GetConversation fetches a conversation with its full roster.
func GetConversation(conversationID uuid.UUID) (*ConversationView, error) {
	return loadConversationView(conversationID)
}

func loadConversationView(conversationID uuid.UUID) (*ConversationView, error) {
	var conv models.Conversation
	err := database.DB.Preload("Participants.User").
		First(&conv, "id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := conversationView(conv)
	return &view, nil
}

// ConversationParticipantIDs returns the member ids, used for per-user fan-out.
func ConversationParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// LeaveConversation removes the caller's membership. When the last member
// leaves, the conversation and everything it owns are deleted for good. The
// returned bool reports whether that cascade ran.
func LeaveConversation(conversationID, userID uuid.UUID) (bool, error) {
	var conv models.Conversation
	if err := database.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	var membership int64
	err := database.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&membership).Error
	if err != nil {
		return false, err
	}
	if membership == 0 {
		return false, ErrForbidden
	}

	deleted := false
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Delete(&models.ConversationParticipant{}).Error
		if err != nil {
			return err
		}

		var remaining int64
		err = tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ?", conversationID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		if err := purgeConversation(tx, conversationID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// purgeConversation hard-deletes a conversation and everything it owns.
func purgeConversation(tx *gorm.DB, conversationID uuid.UUID) error {
	err := tx.Where("message_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.Message{}).
			Select("id").Where("conversation_id = ?", conversationID),
	).Delete(&models.MessageRead{}).Error
	if err != nil {
		return err
	}
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.ConversationParticipant{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Conversation{}, "id = ?", conversationID).Error
}

// touchConversation bumps last activity so listing orders by recency.
// UpdateColumn keeps the model hooks out of a bare column write.
func touchConversation(tx *gorm.DB, conversationID uuid.UUID) error {
	return tx.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("updated_at", time.Now()).Error
}
