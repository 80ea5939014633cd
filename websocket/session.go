package websocket

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// ConnSession adapts a websocket connection to the hub's Session interface.
// The mutex serializes writes; the underlying connection does not allow
// concurrent writers.
type ConnSession struct {
	userID uuid.UUID
	conn   *websocket.Conn
	mu     sync.Mutex
}

func NewConnSession(userID uuid.UUID, conn *websocket.Conn) *ConnSession {
	return &ConnSession{userID: userID, conn: conn}
}

func (s *ConnSession) UserID() uuid.UUID {
	return s.userID
}

func (s *ConnSession) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Event{Event: event, Data: payload})
}
