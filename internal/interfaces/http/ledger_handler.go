package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tendero-bot/internal/application/dto"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

// LedgerHandler API de lectura del libro de movimientos.
type LedgerHandler struct {
	entries repository.LedgerRepository
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(entries repository.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{entries: entries}
}

// Recent godoc
// @Summary      Últimos movimientos del libro
// @Description  Devuelve las entradas más recientes (ventas, entradas y gastos).
// @Tags         ledger
// @Produce      json
// @Param        limit  query     int  false  "Cantidad máxima de entradas (default 50, max 200)"
// @Success      200    {array}   dto.LedgerEntryDTO
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.entries.ListRecent(c.Context(), limit)
	if err != nil {
		return storeError(c, err)
	}

	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryDTO{
			ID:           e.ID,
			ItemKey:      e.ItemKey,
			Category:     e.Category,
			Delta:        e.Delta,
			ResultingQty: e.ResultingQty,
			Amount:       e.Amount,
			Intent:       string(e.Intent),
			MessageID:    e.MessageID,
			AppliedAt:    e.AppliedAt,
		})
	}
	return c.JSON(out)
}
