package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/gorm"
)

const (
	readStatusSent = "sent"
	readStatusRead = "read"
)

type AppendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	MessageText    string
	MessageType    models.MessageType
	FileURL        *string
	FileName       *string
	FileSize       *int64
}

// AppendMessage persists a message from a current participant and bumps the
// conversation's activity timestamp. Fan-out to connected clients is the
// caller's business; a message counts as sent once this returns.
func AppendMessage(input AppendMessageInput) (*MessageView, error) {
	var conv models.Conversation
	err := database.DB.First(&conv, "id = ?", input.ConversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var membership int64
	err = database.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", input.ConversationID, input.SenderID).
		Count(&membership).Error
	if err != nil {
		return nil, err
	}
	if membership == 0 {
		return nil, ErrNotParticipant
	}

	message := models.Message{
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		MessageText:    input.MessageText,
		MessageType:    input.MessageType,
		FileURL:        input.FileURL,
		FileName:       input.FileName,
		FileSize:       input.FileSize,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return touchConversation(tx, input.ConversationID)
	})
	if err != nil {
		return nil, err
	}

	if err := database.DB.First(&message.Sender, "id = ?", input.SenderID).Error; err != nil {
		return nil, err
	}

	view := messageView(message, readStatusSent)
	return &view, nil
}

// ListMessages returns a chronological page (oldest first) of the non-deleted
// messages in a conversation. Paging walks backwards from the newest message,
// then the page is reversed for the client. readStatus is computed relative to
// the requesting user.
func ListMessages(conversationID, requesterID uuid.UUID, limit, offset int) ([]MessageView, error) {
	var conv models.Conversation
	err := database.DB.First(&conv, "id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	identity, err := ResolveUser(requesterID)
	if err != nil {
		return nil, err
	}
	if !CanAccessConversation(identity, conv.CompanyID) {
		return nil, ErrForbidden
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var messages []models.Message
	err = database.DB.Preload("Sender").
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	readByRequester, err := receiptSet(messages, requesterID)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		status := readStatusSent
		if m.SenderID != requesterID && readByRequester[m.ID] {
			status = readStatusRead
		}
		views = append(views, messageView(m, status))
	}
	return views, nil
}

func receiptSet(messages []models.Message, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(messages))
	if len(messages) == 0 {
		return set, nil
	}

	ids := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	var readIDs []uuid.UUID
	err := database.DB.Model(&models.MessageRead{}).
		Where("user_id = ? AND message_id IN ?", userID, ids).
		Pluck("message_id", &readIDs).Error
	if err != nil {
		return nil, err
	}
	for _, id := range readIDs {
		set[id] = true
	}
	return set, nil
}

// EditMessage updates the body of the editor's own message. Deleted messages
// cannot be edited.
func EditMessage(messageID, editorID uuid.UUID, newText string) (*MessageView, error) {
	var message models.Message
	err := database.DB.Preload("Sender").
		First(&message, "id = ? AND is_deleted = ?", messageID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if message.SenderID != editorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	message.MessageText = newText
	message.IsEdited = true
	message.EditedAt = &now
	err = database.DB.Model(&models.Message{}).Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"message_text": newText,
			"is_edited":    true,
			"edited_at":    now,
		}).Error
	if err != nil {
		return nil, err
	}

	view := messageView(message, readStatusSent)
	return &view, nil
}

// SoftDeleteMessage replaces the body with the deletion marker and flags the
// row. The message stays in the log so ordering and history are preserved, but
// it no longer shows up in listing or unread math.
func SoftDeleteMessage(messageID, requesterID uuid.UUID) (*MessageView, error) {
	var message models.Message
	err := database.DB.Preload("Sender").First(&message, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if message.SenderID != requesterID {
		return nil, ErrForbidden
	}

	message.MessageText = models.DeletedMessageText
	message.IsDeleted = true
	err = database.DB.Model(&models.Message{}).Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"message_text": models.DeletedMessageText,
			"is_deleted":   true,
		}).Error
	if err != nil {
		return nil, err
	}

	view := messageView(message, readStatusSent)
	return &view, nil
}
