package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/models"
)

// Response shapes returned to the web client. Field names match the JSON the
// frontend already consumes, so they stay camelCase.

type ParticipantView struct {
	UserID    uuid.UUID `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	PhotoURL  *string   `json:"photoUrl"`
	Email     string    `json:"email"`
}

type MessageView struct {
	ID             uuid.UUID          `json:"id"`
	ConversationID uuid.UUID          `json:"conversationId"`
	SenderID       uuid.UUID          `json:"senderId"`
	SenderName     string             `json:"senderName"`
	SenderPhotoURL *string            `json:"senderPhotoUrl"`
	MessageText    string             `json:"messageText"`
	MessageType    models.MessageType `json:"messageType"`
	FileURL        *string            `json:"fileUrl"`
	FileName       *string            `json:"fileName"`
	FileSize       *int64             `json:"fileSize"`
	IsEdited       bool               `json:"isEdited"`
	IsDeleted      bool               `json:"isDeleted"`
	EditedAt       *time.Time         `json:"editedAt"`
	CreatedAt      time.Time          `json:"createdAt"`
	ReadStatus     string             `json:"readStatus"`
}

type ConversationView struct {
	ID             uuid.UUID               `json:"id"`
	Type           models.ConversationType `json:"type"`
	Name           *string                 `json:"name"`
	ProjectID      *uuid.UUID              `json:"projectId"`
	CompanyID      *uuid.UUID              `json:"companyId"`
	CreatedBy      *uuid.UUID              `json:"createdBy"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
	LastMessage    *MessageView            `json:"lastMessage,omitempty"`
	ParticipantIDs []uuid.UUID             `json:"participantIds"`
	Participants   []ParticipantView       `json:"participants,omitempty"`
	UnreadCount    int64                   `json:"unreadCount"`
}

func participantView(p models.ConversationParticipant) ParticipantView {
	return ParticipantView{
		UserID:    p.UserID,
		FirstName: p.User.FirstName,
		LastName:  p.User.LastName,
		PhotoURL:  p.User.PhotoURL,
		Email:     p.User.Email,
	}
}

func messageView(m models.Message, readStatus string) MessageView {
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.Sender.DisplayName(),
		SenderPhotoURL: m.Sender.PhotoURL,
		MessageText:    m.MessageText,
		MessageType:    m.MessageType,
		FileURL:        m.FileURL,
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		IsEdited:       m.IsEdited,
		IsDeleted:      m.IsDeleted,
		EditedAt:       m.EditedAt,
		CreatedAt:      m.CreatedAt,
		ReadStatus:     readStatus,
	}
}

func conversationView(c models.Conversation) ConversationView {
	view := ConversationView{
		ID:        c.ID,
		Type:      c.Type,
		Name:      c.Name,
		ProjectID: c.ProjectID,
		CompanyID: c.CompanyID,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	view.ParticipantIDs = make([]uuid.UUID, 0, len(c.Participants))
	view.Participants = make([]ParticipantView, 0, len(c.Participants))
	for _, p := range c.Participants {
		view.ParticipantIDs = append(view.ParticipantIDs, p.UserID)
		view.Participants = append(view.Participants, participantView(p))
	}
	return view
}
