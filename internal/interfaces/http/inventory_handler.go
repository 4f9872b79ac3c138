package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tendero-bot/internal/application/dto"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

// InventoryHandler API de lectura del inventario para el dashboard externo.
type InventoryHandler struct {
	items repository.ItemRepository
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(items repository.ItemRepository) *InventoryHandler {
	return &InventoryHandler{items: items}
}

// List godoc
// @Summary      Listar inventario
// @Description  Devuelve todos los items con su cantidad y umbral de stock bajo.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.ItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	items, err := h.items.List(c.Context())
	if err != nil {
		return storeError(c, err)
	}

	out := make([]dto.ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ItemDTO{
			Key:               item.Key,
			Name:              item.Name,
			Quantity:          item.Quantity,
			LowStockThreshold: item.LowStockThreshold,
			UpdatedAt:         item.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Listar items con stock bajo
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.ItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/items/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	low, err := h.items.ListLowStock(c.Context())
	if err != nil {
		return storeError(c, err)
	}

	out := make([]dto.ItemDTO, 0, len(low))
	for _, item := range low {
		out = append(out, dto.ItemDTO{
			Key:               item.Key,
			Name:              item.Name,
			Quantity:          item.Quantity,
			LowStockThreshold: item.LowStockThreshold,
			UpdatedAt:         item.UpdatedAt,
		})
	}
	return c.JSON(out)
}

func storeError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code: "STORE_ERROR", Message: err.Error(),
	})
}
