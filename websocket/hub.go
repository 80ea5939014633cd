package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Realtime event names pushed to connected clients.
const (
	EventNewMessage          = "new-message"
	EventMessageUpdated      = "message-updated"
	EventMessageDeleted      = "message-deleted"
	EventMessagesRead        = "messages-read"
	EventConversationDeleted = "conversation-deleted"
	EventUserTyping          = "user-typing"
	EventUserStoppedTyping   = "user-stopped-typing"
)

// Session is one connected client. The hub only needs an owner and a way to
// push events, so tests can drive the registry with fakes instead of sockets.
type Session interface {
	UserID() uuid.UUID
	Send(event string, payload interface{}) error
}

// Event is the wire envelope for everything pushed over a socket.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub is the fan-out bus. It tracks sessions on two kinds of channel: a
// per-user channel joined once per connection, and conversation channels a
// client joins while viewing a thread. Delivery is best-effort, at most once
// per connected session; a failed write drops the session and is never
// surfaced to the publisher.
type Hub struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]map[Session]struct{}
	conversations map[uuid.UUID]map[Session]struct{}
	sessionConvs  map[Session]map[uuid.UUID]struct{}
}

// DefaultHub is the process-wide bus the HTTP handlers publish to.
var DefaultHub = NewHub()

func NewHub() *Hub {
	return &Hub{
		users:         make(map[uuid.UUID]map[Session]struct{}),
		conversations: make(map[uuid.UUID]map[Session]struct{}),
		sessionConvs:  make(map[Session]map[uuid.UUID]struct{}),
	}
}

// Register adds a session to its owner's user channel.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := s.UserID()
	if h.users[userID] == nil {
		h.users[userID] = make(map[Session]struct{})
	}
	h.users[userID][s] = struct{}{}
	h.sessionConvs[s] = make(map[uuid.UUID]struct{})
	log.Printf("Client registered: %s", userID)
}

// Unregister removes a session from its user channel and from every
// conversation channel it joined.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(s)
	log.Printf("Client unregistered: %s", s.UserID())
}

func (h *Hub) unregisterLocked(s Session) {
	userID := s.UserID()
	if sessions, ok := h.users[userID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(h.users, userID)
		}
	}
	for convID := range h.sessionConvs[s] {
		if sessions, ok := h.conversations[convID]; ok {
			delete(sessions, s)
			if len(sessions) == 0 {
				delete(h.conversations, convID)
			}
		}
	}
	delete(h.sessionConvs, s)
}

// JoinConversation subscribes a session to a conversation channel.
func (h *Hub) JoinConversation(s Session, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, registered := h.sessionConvs[s]; !registered {
		return
	}
	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[Session]struct{})
	}
	h.conversations[conversationID][s] = struct{}{}
	h.sessionConvs[s][conversationID] = struct{}{}
}

// LeaveConversation unsubscribes a session from a conversation channel.
func (h *Hub) LeaveConversation(s Session, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessions, ok := h.conversations[conversationID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(h.conversations, conversationID)
		}
	}
	if convs, ok := h.sessionConvs[s]; ok {
		delete(convs, conversationID)
	}
}

// PublishToConversation pushes an event to every session viewing the
// conversation. Pass a non-nil excludeUser to skip the originator's sessions
// (used for typing indicators).
func (h *Hub) PublishToConversation(conversationID uuid.UUID, event string, payload interface{}, excludeUser uuid.UUID) {
	h.mu.RLock()
	targets := make([]Session, 0, len(h.conversations[conversationID]))
	for s := range h.conversations[conversationID] {
		if excludeUser != uuid.Nil && s.UserID() == excludeUser {
			continue
		}
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, payload)
}

// PublishToUser pushes an event to every session on a user's personal channel.
func (h *Hub) PublishToUser(userID uuid.UUID, event string, payload interface{}) {
	h.mu.RLock()
	targets := make([]Session, 0, len(h.users[userID]))
	for s := range h.users[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, payload)
}

func (h *Hub) deliver(targets []Session, event string, payload interface{}) {
	var failed []Session
	for _, s := range targets {
		if err := s.Send(event, payload); err != nil {
			log.Printf("Error sending %s event to client %s: %v", event, s.UserID(), err)
			failed = append(failed, s)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	for _, s := range failed {
		h.unregisterLocked(s)
	}
	h.mu.Unlock()
}
