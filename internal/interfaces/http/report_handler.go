package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tendero-bot/internal/application/dto"
	"github.com/jhoicas/tendero-bot/internal/application/ledger"
)

// ReportHandler expone el reporte diario en PDF.
type ReportHandler struct {
	reports *ledger.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(reports *ledger.ReportUseCase) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Daily godoc
// @Summary      Reporte diario en PDF
// @Description  Resumen de ventas, entradas y gastos del día indicado.
// @Tags         reports
// @Produce      application/pdf
// @Param        date  query     string  false  "Día del reporte (YYYY-MM-DD, default hoy)"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "INVALID_DATE", Message: "formato esperado YYYY-MM-DD",
			})
		}
		day = parsed
	}

	pdf, err := h.reports.Daily(c.Context(), day)
	if err != nil {
		return storeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="reporte-%s.pdf"`, day.Format("2006-01-02")))
	return c.Send(pdf)
}
