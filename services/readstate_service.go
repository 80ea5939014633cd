package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/gorm"
)

// MarkConversationRead advances the caller's last-read watermark and backfills
// a receipt for every message from another sender that lacks one. The two
// writes are not atomic, but both are idempotent, so a retry converges.
func MarkConversationRead(conversationID, userID uuid.UUID) error {
	var conv models.Conversation
	err := database.DB.First(&conv, "id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	identity, err := ResolveUser(userID)
	if err != nil {
		return err
	}
	if !CanAccessConversation(identity, conv.CompanyID) {
		return ErrForbidden
	}

	now := time.Now()
	err = database.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", now).Error
	if err != nil {
		return err
	}

	// Receipt backfill: one insert per unread message from another sender.
	// ON CONFLICT DO NOTHING keeps the operation safe to repeat.
	return database.DB.Exec(`
		INSERT INTO message_reads (message_id, user_id, read_at)
		SELECT m.id, ?, ?
		FROM messages m
		WHERE m.conversation_id = ?
		  AND m.sender_id <> ?
		  AND m.is_deleted = ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads mr
			WHERE mr.message_id = m.id AND mr.user_id = ?
		  )
		ON CONFLICT DO NOTHING`,
		userID, now, conversationID, userID, false, userID,
	).Error
}

// UnreadCount is the number of non-deleted messages from other senders created
// after the user's watermark, or all of them when no watermark exists yet.
func UnreadCount(conversationID, userID uuid.UUID) (int64, error) {
	var participant models.ConversationParticipant
	err := database.DB.
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&participant).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	query := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_deleted = ?", conversationID, userID, false)
	if participant.LastReadAt != nil {
		query = query.Where("created_at > ?", *participant.LastReadAt)
	}

	var count int64
	err = query.Count(&count).Error
	return count, err
}
