package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
)

func TestAppendMessageRequiresParticipant(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)
	outsider := createTestUser(t, "Eve", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)

	_, err := AppendMessage(AppendMessageInput{
		ConversationID: conv.ID,
		SenderID:       outsider.ID,
		MessageText:    "let me in",
	})
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	var count int64
	database.DB.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no message rows, got %d", count)
	}
}

func TestAppendMessageBumpsConversationActivity(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)

	var before models.Conversation
	database.DB.First(&before, "id = ?", conv.ID)

	time.Sleep(5 * time.Millisecond)
	view := sendTestMessage(t, conv.ID, a.ID, "hello")

	if view.SenderName != "Alice Tester" {
		t.Fatalf("expected enriched sender name, got %q", view.SenderName)
	}
	if view.ReadStatus != "sent" {
		t.Fatalf("expected new message readStatus sent, got %q", view.ReadStatus)
	}

	var after models.Conversation
	database.DB.First(&after, "id = ?", conv.ID)
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestListMessagesChronologicalWithReadStatus(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	first := sendTestMessage(t, conv.ID, a.ID, "one")
	time.Sleep(2 * time.Millisecond)
	second := sendTestMessage(t, conv.ID, a.ID, "two")

	// Unread by Bob: everything shows as sent from both sides.
	forBob, err := ListMessages(conv.ID, b.ID, 50, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(forBob) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(forBob))
	}
	if forBob[0].ID != first.ID || forBob[1].ID != second.ID {
		t.Fatal("expected oldest-first ordering")
	}
	for _, m := range forBob {
		if m.ReadStatus != "sent" {
			t.Fatalf("expected readStatus sent before any receipt, got %q", m.ReadStatus)
		}
	}

	if err := MarkConversationRead(conv.ID, b.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	forBob, err = ListMessages(conv.ID, b.ID, 50, 0)
	if err != nil {
		t.Fatalf("list after read failed: %v", err)
	}
	for _, m := range forBob {
		if m.ReadStatus != "read" {
			t.Fatalf("expected readStatus read after receipt, got %q", m.ReadStatus)
		}
	}

	// The sender always sees their own messages as sent.
	forAlice, err := ListMessages(conv.ID, a.ID, 50, 0)
	if err != nil {
		t.Fatalf("list for sender failed: %v", err)
	}
	for _, m := range forAlice {
		if m.ReadStatus != "sent" {
			t.Fatalf("expected sender readStatus sent, got %q", m.ReadStatus)
		}
	}
}

func TestListMessagesUnknownConversation(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)

	_, err := ListMessages(uuid.New(), a.ID, 50, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMessagesCrossTenantForbidden(t *testing.T) {
	setupTestDB(t)
	companyX := createTestCompany(t, "X")
	companyY := createTestCompany(t, "Y")
	a := createTestUser(t, "Alice", &companyX.ID, false)
	b := createTestUser(t, "Bob", &companyX.ID, false)
	c := createTestUser(t, "Carol", &companyY.ID, false)
	d := createTestUser(t, "Dana", nil, true)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	sendTestMessage(t, conv.ID, a.ID, "hello")

	if _, err := ListMessages(conv.ID, c.ID, 50, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for cross-tenant reader, got %v", err)
	}

	if _, err := ListMessages(conv.ID, d.ID, 50, 0); err != nil {
		t.Fatalf("expected superadmin to read, got %v", err)
	}
}

func TestEditMessage(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	msg := sendTestMessage(t, conv.ID, a.ID, "helo")

	if _, err := EditMessage(msg.ID, b.ID, "nope"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner edit, got %v", err)
	}

	view, err := EditMessage(msg.ID, a.ID, "hello")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if view.MessageText != "hello" || !view.IsEdited || view.EditedAt == nil {
		t.Fatalf("expected edited view, got %+v", view)
	}

	var stored models.Message
	database.DB.First(&stored, "id = ?", msg.ID)
	if stored.MessageText != "hello" || !stored.IsEdited || stored.EditedAt == nil {
		t.Fatalf("expected edit persisted, got %+v", stored)
	}
}

func TestSoftDeleteMessage(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	msg := sendTestMessage(t, conv.ID, a.ID, "oops")
	sendTestMessage(t, conv.ID, a.ID, "keep me")

	if _, err := SoftDeleteMessage(msg.ID, b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}

	view, err := SoftDeleteMessage(msg.ID, a.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !view.IsDeleted || view.MessageText != models.DeletedMessageText {
		t.Fatalf("expected deletion marker, got %+v", view)
	}

	// The row stays in the log with the marker body, but listing and unread
	// math no longer see it.
	var stored models.Message
	if err := database.DB.First(&stored, "id = ?", msg.ID).Error; err != nil {
		t.Fatalf("expected row preserved: %v", err)
	}
	if stored.MessageText != models.DeletedMessageText || !stored.IsDeleted {
		t.Fatalf("expected stored marker, got %+v", stored)
	}

	listed, err := ListMessages(conv.ID, b.ID, 50, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].MessageText != "keep me" {
		t.Fatalf("expected deleted message excluded from listing, got %+v", listed)
	}

	unread, err := UnreadCount(conv.ID, b.ID)
	if err != nil {
		t.Fatalf("unread failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected unread 1 after delete, got %d", unread)
	}

	// Deletion is terminal.
	if _, err := EditMessage(msg.ID, a.ID, "resurrect"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound editing a deleted message, got %v", err)
	}
}
