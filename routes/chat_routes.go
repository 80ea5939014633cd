package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/staff4dshire/staffdesk/handlers"
)

func ChatRoutes(app *fiber.App) {
	api := app.Group("/api")

	chat := api.Group("/chat")
	chat.Post("/upload", handlers.UploadFile)

	chat.Get("/conversations", handlers.GetConversations)
	chat.Post("/conversations", handlers.CreateConversation)
	chat.Get("/conversations/:conversationId", handlers.GetConversation)
	chat.Put("/conversations/:conversationId/read", handlers.MarkConversationRead)
	chat.Delete("/conversations/:conversationId", handlers.DeleteConversation)
	chat.Get("/conversations/:conversationId/messages", handlers.GetConversationMessages)

	chat.Post("/messages", handlers.SendMessage)
	chat.Put("/messages/:messageId", handlers.EditMessage)
	chat.Delete("/messages/:messageId", handlers.DeleteMessage)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
