package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/models"
	"github.com/staff4dshire/staffdesk/services"
	"github.com/staff4dshire/staffdesk/websocket"
)

var validate = validator.New()

type CreateConversationRequest struct {
	Type      string   `json:"type" validate:"required,oneof=direct group"`
	UserIDs   []string `json:"userIds" validate:"required,min=1,dive,uuid"`
	ProjectID *string  `json:"projectId" validate:"omitempty,uuid"`
	Name      *string  `json:"name"`
	CreatedBy *string  `json:"createdBy" validate:"omitempty,uuid"`
}

// CreateConversation creates a conversation, or returns the existing one when
// a direct pair already has a thread. 201 on create, 200 on reuse.
func CreateConversation(c *fiber.Ctx) error {
	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type and userIds array are required"})
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
		}
		userIDs = append(userIDs, id)
	}

	input := services.CreateConversationInput{
		Type:      models.ConversationType(req.Type),
		UserIDs:   userIDs,
		Name:      req.Name,
		ProjectID: parseOptionalUUID(req.ProjectID),
		CreatedBy: parseOptionalUUID(req.CreatedBy),
	}

	view, created, err := services.CreateOrReuseConversation(input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation", "message": err.Error()})
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(view)
}

// GetConversations lists the requesting user's conversations, most recent
// activity first.
func GetConversations(c *fiber.Ctx) error {
	if c.Query("userId") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId query parameter is required"})
	}
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	views, err := services.ListConversationsForUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversations", "message": err.Error()})
	}
	return c.JSON(views)
}

// GetConversation fetches one conversation with its roster.
func GetConversation(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	view, err := services.GetConversation(conversationID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversation", "message": err.Error()})
	}
	return c.JSON(view)
}

type markReadRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// MarkConversationRead advances the caller's watermark, backfills receipts and
// notifies the conversation channel.
func MarkConversationRead(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId is required in request body"})
	}
	userID, _ := uuid.Parse(req.UserID)

	if err := services.MarkConversationRead(conversationID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark conversation as read", "message": err.Error()})
	}

	websocket.DefaultHub.PublishToConversation(conversationID, websocket.EventMessagesRead, fiber.Map{
		"conversationId": conversationID,
		"userId":         userID,
	}, uuid.Nil)

	return c.JSON(fiber.Map{"success": true, "message": "Conversation marked as read"})
}

type leaveConversationRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// DeleteConversation removes the caller's membership. The last member leaving
// deletes the conversation and its messages outright.
func DeleteConversation(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req leaveConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId is required"})
	}
	userID, _ := uuid.Parse(req.UserID)

	if _, err := services.LeaveConversation(conversationID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a participant in this conversation"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete conversation", "message": err.Error()})
	}

	websocket.DefaultHub.PublishToConversation(conversationID, websocket.EventConversationDeleted, fiber.Map{
		"conversationId": conversationID,
		"userId":         userID,
	}, uuid.Nil)

	return c.JSON(fiber.Map{"success": true, "message": "Conversation deleted"})
}

func parseOptionalUUID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}
