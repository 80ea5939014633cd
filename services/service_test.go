package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-level connection at a fresh in-memory
// database. Each test gets its own named database so state never leaks.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.Project{},
		&models.User{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageRead{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
}

func ids(list ...uuid.UUID) []uuid.UUID {
	return list
}

func createTestCompany(t *testing.T, name string) *models.Company {
	t.Helper()
	company := models.Company{Name: name}
	if err := database.DB.Create(&company).Error; err != nil {
		t.Fatalf("failed to create company: %v", err)
	}
	return &company
}

func createTestUser(t *testing.T, firstName string, companyID *uuid.UUID, superadmin bool) *models.User {
	t.Helper()
	user := models.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        fmt.Sprintf("%s.%s@example.com", strings.ToLower(firstName), uuid.NewString()[:8]),
		Password:     "hashed",
		Role:         "staff",
		IsSuperadmin: superadmin,
		CompanyID:    companyID,
	}
	if superadmin {
		user.Role = "superadmin"
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createTestConversation(t *testing.T, convType models.ConversationType, userIDs ...uuid.UUID) *ConversationView {
	t.Helper()
	view, _, err := CreateOrReuseConversation(CreateConversationInput{
		Type:    convType,
		UserIDs: userIDs,
	})
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	return view
}

func sendTestMessage(t *testing.T, conversationID, senderID uuid.UUID, text string) *MessageView {
	t.Helper()
	view, err := AppendMessage(AppendMessageInput{
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageText:    text,
	})
	if err != nil {
		t.Fatalf("failed to send message: %v", err)
	}
	return view
}
