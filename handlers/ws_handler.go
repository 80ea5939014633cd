package handlers

import (
	"errors"
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/staff4dshire/staffdesk/configs"
	"github.com/staff4dshire/staffdesk/websocket"
)

// ServeWs handles one realtime client. The first frame must be an auth
// message; after that the client can join or leave conversation channels and
// broadcast typing indicators. Message sending stays on the REST API.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	rawUserID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid user_id, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	session := websocket.NewConnSession(userID, c)
	websocket.DefaultHub.Register(session)
	defer func() {
		websocket.DefaultHub.Unregister(session)
		c.Close()
	}()

	type clientFrame struct {
		Type           string `json:"type"`
		ConversationID string `json:"conversationId"`
	}
	for {
		var frame clientFrame
		if err := c.ReadJSON(&frame); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		conversationID, err := uuid.Parse(frame.ConversationID)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Invalid conversation ID"})
			continue
		}

		switch frame.Type {
		case "join-conversation":
			websocket.DefaultHub.JoinConversation(session, conversationID)
		case "leave-conversation":
			websocket.DefaultHub.LeaveConversation(session, conversationID)
		case "typing":
			websocket.DefaultHub.PublishToConversation(conversationID, websocket.EventUserTyping, fiber.Map{
				"conversationId": conversationID,
				"userId":         userID,
			}, userID)
		case "stop-typing":
			websocket.DefaultHub.PublishToConversation(conversationID, websocket.EventUserStoppedTyping, fiber.Map{
				"conversationId": conversationID,
				"userId":         userID,
			}, userID)
		default:
			_ = c.WriteJSON(fiber.Map{"error": "Unknown message type"})
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
