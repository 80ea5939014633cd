package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/models"
	"github.com/staff4dshire/staffdesk/services"
	"github.com/staff4dshire/staffdesk/websocket"
)

type SendMessageRequest struct {
	ConversationID string  `json:"conversationId" validate:"required,uuid"`
	SenderID       string  `json:"senderId" validate:"required,uuid"`
	MessageText    string  `json:"messageText" validate:"required"`
	MessageType    string  `json:"messageType" validate:"omitempty,oneof=text image file"`
	FileURL        *string `json:"fileUrl"`
	FileName       *string `json:"fileName"`
	FileSize       *int64  `json:"fileSize"`
}

// SendMessage persists a message and fans it out: once to the conversation
// channel, and once to every other participant's personal channel so clients
// not viewing the thread still see it (badge counts). Fan-out is best-effort;
// the message is sent once the insert succeeds.
func SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "conversationId, senderId, and messageText are required"})
	}

	conversationID, _ := uuid.Parse(req.ConversationID)
	senderID, _ := uuid.Parse(req.SenderID)

	view, err := services.AppendMessage(services.AppendMessageInput{
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageText:    req.MessageText,
		MessageType:    models.MessageType(req.MessageType),
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		case errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User is not a participant in this conversation"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message", "message": err.Error()})
	}

	websocket.DefaultHub.PublishToConversation(conversationID, websocket.EventNewMessage, view, uuid.Nil)
	if participantIDs, err := services.ConversationParticipantIDs(conversationID); err == nil {
		for _, participantID := range participantIDs {
			if participantID == senderID {
				continue
			}
			websocket.DefaultHub.PublishToUser(participantID, websocket.EventNewMessage, view)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetConversationMessages returns a chronological page of a conversation's
// messages, with per-message read status for the requesting user.
func GetConversationMessages(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	if c.Query("userId") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId query parameter is required"})
	}
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	views, err := services.ListMessages(conversationID, userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages", "message": err.Error()})
	}
	return c.JSON(views)
}

type EditMessageRequest struct {
	MessageText string `json:"messageText" validate:"required"`
	SenderID    string `json:"senderId" validate:"required,uuid"`
}

// EditMessage updates the body of the caller's own message and republishes it
// to the conversation channel.
func EditMessage(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "messageText and senderId are required"})
	}
	senderID, _ := uuid.Parse(req.SenderID)

	view, err := services.EditMessage(messageID, senderID, req.MessageText)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only edit your own messages"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to edit message", "message": err.Error()})
	}

	websocket.DefaultHub.PublishToConversation(view.ConversationID, websocket.EventMessageUpdated, view, uuid.Nil)

	return c.JSON(view)
}

type DeleteMessageRequest struct {
	SenderID string `json:"senderId" validate:"required,uuid"`
}

// DeleteMessage soft-deletes the caller's own message and notifies the
// conversation channel.
func DeleteMessage(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req DeleteMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "senderId is required"})
	}
	senderID, _ := uuid.Parse(req.SenderID)

	view, err := services.SoftDeleteMessage(messageID, senderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only delete your own messages"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete message", "message": err.Error()})
	}

	websocket.DefaultHub.PublishToConversation(view.ConversationID, websocket.EventMessageDeleted, view, uuid.Nil)

	return c.JSON(fiber.Map{"success": true, "message": view})
}
