package jobs

import (
	"log"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/gorm"
)

// PurgeEmptyConversations removes conversations that lost their last
// participant. Leaving normally cascades this cleanup inline; the sweep only
// catches rows a crashed request left behind.
func PurgeEmptyConversations() {
	log.Println("Running job: PurgeEmptyConversations...")

	var orphanIDs []uuid.UUID
	err := database.DB.Model(&models.Conversation{}).
		Where("NOT EXISTS (SELECT 1 FROM conversation_participants cp WHERE cp.conversation_id = conversations.id)").
		Pluck("id", &orphanIDs).Error
	if err != nil {
		log.Printf("Error finding empty conversations: %v", err)
		return
	}

	if len(orphanIDs) == 0 {
		log.Println("No empty conversations found.")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("message_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.Message{}).
				Select("id").Where("conversation_id IN ?", orphanIDs),
		).Delete(&models.MessageRead{}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN ?", orphanIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", orphanIDs).Delete(&models.Conversation{}).Error
	})
	if err != nil {
		log.Printf("Error purging empty conversations: %v", err)
		return
	}

	log.Printf("Purged %d empty conversation(s).", len(orphanIDs))
}
