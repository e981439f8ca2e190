package chatapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
	"github.com/wayfarer-ai/wayfarer/pkg/chat"
	"github.com/wayfarer-ai/wayfarer/pkg/chat/chatsrv"
	"github.com/wayfarer-ai/wayfarer/pkg/logx"
)

// ChatHandlers exposes the conversation endpoints.
type ChatHandlers struct {
	service *chatsrv.ChatService
}

func NewChatHandlers(service *chatsrv.ChatService) *ChatHandlers {
	return &ChatHandlers{service: service}
}

// RegisterRoutes mounts the chat endpoints on the given router.
func (h *ChatHandlers) RegisterRoutes(router fiber.Router) {
	chatGroup := router.Group("/chat")

	chatGroup.Post("/send", h.SendMessage)
	chatGroup.Get("/history", h.GetHistory)
	chatGroup.Delete("/history", h.ClearHistory)
}

// SendMessage handles POST /chat/send
func (h *ChatHandlers) SendMessage(c *fiber.Ctx) error {
	var req chat.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		logx.Warnf("Invalid chat request body: %v", err)
		return chat.ErrMissingParameters()
	}

	if req.Message == "" || req.UserID == "" {
		return chat.ErrMissingParameters().
			WithDetail("required", []string{"message", "userId"})
	}

	turn, err := h.service.SendMessage(c.Context(), req.Message, req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(turn)
}

// GetHistory handles GET /chat/history?userId=...
func (h *ChatHandlers) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return chat.ErrMissingParameters().WithDetail("required", []string{"userId"})
	}

	history, err := h.service.GetConversationHistory(c.Context(), userID)
	if err != nil {
		return err
	}
	if history == nil {
		history = []llm.Message{}
	}

	return c.JSON(history)
}

// ClearHistory handles DELETE /chat/history?userId=...
func (h *ChatHandlers) ClearHistory(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return chat.ErrMissingParameters().WithDetail("required", []string{"userId"})
	}

	if err := h.service.ClearConversationHistory(c.Context(), userID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status": "success",
	})
}
