package inventory

import (
	"inventario/internal/models"

	"github.com/shopspring/decimal"
)

type Row struct {
	models.Product
	TotalValue decimal.Decimal
}

// Summary is a product listing with quantity × unit_price per row and the
// sum over exactly those rows.
type Summary struct {
	Rows       []Row
	GrandTotal decimal.Decimal
}

func Summarize(products []models.Product) Summary {
	s := Summary{Rows: make([]Row, 0, len(products)), GrandTotal: decimal.Zero}
	for _, p := range products {
		total := decimal.NewFromFloat(p.UnitPrice).Mul(decimal.NewFromInt(int64(p.Quantity)))
		s.Rows = append(s.Rows, Row{Product: p, TotalValue: total})
		s.GrandTotal = s.GrandTotal.Add(total)
	}
	return s
}
