package inventory

import (
	"bytes"
	"errors"
	"fmt"

	"inventario/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GET /export/csv
// Always exports the whole table, whatever filter the list view shows.
func (h *Handler) ExportCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := h.repo.List(c.UserContext(), Filter{})
		if err != nil {
			return httpError(err)
		}

		var buf bytes.Buffer
		if err := WriteCSV(&buf, products); err != nil {
			h.log.Error("csv export failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el CSV")
		}
		metrics.ExportRows.WithLabelValues("csv").Add(float64(len(products)))

		c.Attachment(CSVFilename)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}

// GET /export/excel
func (h *Handler) ExportExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := h.repo.List(c.UserContext(), Filter{})
		if err != nil {
			return httpError(err)
		}

		var buf bytes.Buffer
		if err := WriteXLSX(&buf, products); err != nil {
			var tooLong *CellTooLongError
			if errors.As(err, &tooLong) {
				h.log.Warn("xlsx export rejected", zap.Uint("id", tooLong.ID), zap.String("column", tooLong.Column), zap.Int("length", tooLong.Length))
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					fmt.Sprintf("No se pudo generar el Excel: %s. Use la exportación CSV.", tooLong.Error()))
			}
			h.log.Error("xlsx export failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el Excel")
		}
		metrics.ExportRows.WithLabelValues("xlsx").Add(float64(len(products)))

		c.Attachment(XLSXFilename)
		c.Set(fiber.HeaderContentType, XLSXMimeType)
		return c.Send(buf.Bytes())
	}
}
