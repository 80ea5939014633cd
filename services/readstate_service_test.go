package services

import (
	"testing"
	"time"

	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
)

func TestMarkConversationReadBackfillsReceipts(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	m1 := sendTestMessage(t, conv.ID, a.ID, "one")
	m2 := sendTestMessage(t, conv.ID, a.ID, "two")
	own := sendTestMessage(t, conv.ID, b.ID, "reply")

	if err := MarkConversationRead(conv.ID, b.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	unread, err := UnreadCount(conv.ID, b.ID)
	if err != nil {
		t.Fatalf("unread failed: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected unread 0 after mark read, got %d", unread)
	}

	var receipts []models.MessageRead
	database.DB.Where("user_id = ?", b.ID).Find(&receipts)
	got := map[string]bool{}
	for _, r := range receipts {
		got[r.MessageID.String()] = true
	}
	if !got[m1.ID.String()] || !got[m2.ID.String()] {
		t.Fatalf("expected receipts for both of Alice's messages, got %v", got)
	}
	// A sender never receives a receipt for their own message.
	if got[own.ID.String()] {
		t.Fatal("expected no receipt for Bob's own message")
	}

	var participant models.ConversationParticipant
	database.DB.Where("conversation_id = ? AND user_id = ?", conv.ID, b.ID).First(&participant)
	if participant.LastReadAt == nil {
		t.Fatal("expected watermark to be set")
	}
}

func TestMarkConversationReadIsIdempotent(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	sendTestMessage(t, conv.ID, a.ID, "one")

	if err := MarkConversationRead(conv.ID, b.ID); err != nil {
		t.Fatalf("first mark read failed: %v", err)
	}
	if err := MarkConversationRead(conv.ID, b.ID); err != nil {
		t.Fatalf("second mark read failed: %v", err)
	}

	var count int64
	database.DB.Model(&models.MessageRead{}).Where("user_id = ?", b.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single receipt, got %d", count)
	}
}

func TestUnreadCountHonorsWatermark(t *testing.T) {
	setupTestDB(t)
	company := createTestCompany(t, "Acme")
	a := createTestUser(t, "Alice", &company.ID, false)
	b := createTestUser(t, "Bob", &company.ID, false)

	conv := createTestConversation(t, models.ConversationTypeDirect, a.ID, b.ID)
	sendTestMessage(t, conv.ID, a.ID, "before")

	// Without a watermark every foreign message counts.
	unread, err := UnreadCount(conv.ID, b.ID)
	if err != nil {
		t.Fatalf("unread failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected unread 1 with no watermark, got %d", unread)
	}

	if err := MarkConversationRead(conv.ID, b.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	sendTestMessage(t, conv.ID, a.ID, "after")

	unread, err = UnreadCount(conv.ID, b.ID)
	if err != nil {
		t.Fatalf("unread failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected unread 1 after new message, got %d", unread)
	}
}
