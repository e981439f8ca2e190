package memoryapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wayfarer-ai/wayfarer/pkg/memory"
	"github.com/wayfarer-ai/wayfarer/pkg/memory/memorysrv"
)

// Browse parameters: a wide, low-threshold sweep so the endpoint lists
// everything visible to the user rather than answering a query.
const (
	browseLimit     = 50
	browseThreshold = 0.1
)

type MemoryHandlers struct {
	service *memorysrv.MemoryService
}

func NewMemoryHandlers(service *memorysrv.MemoryService) *MemoryHandlers {
	return &MemoryHandlers{service: service}
}

func (h *MemoryHandlers) RegisterRoutes(router fiber.Router) {
	mem := router.Group("/memory")

	mem.Get("/retrieve", h.RetrieveMemories)
}

func (h *MemoryHandlers) RetrieveMemories(c *fiber.Ctx) error {
	userID := c.Query("userId")

	stored, err := h.service.RetrieveMemories(c.Context(), "", "", userID, browseLimit, browseThreshold)
	if err != nil {
		return err
	}

	memories := make([]memory.Memory, 0, len(stored))
	for _, s := range stored {
		memories = append(memories, s.Memory)
	}

	return c.JSON(memories)
}
