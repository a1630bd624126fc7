// Package pricing фиксирует цены позиций корзины на момент checkout.
package pricing

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Line: позиция снимка с ценой, зафиксированной на момент расчёта.
type Line struct {
	ProductID      int64
	Quantity       int32
	UnitPriceMinor int64
}

// Snapshot: цены и итог корзины в один момент времени.
type Snapshot struct {
	Lines      []Line
	TotalMinor int64
	Currency   string
}

// OrderLines переводит снимок в позиции заказа.
func (s Snapshot) OrderLines() []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceMinor: l.UnitPriceMinor,
		})
	}
	return lines
}

// Pricer считает снимок по текущему каталогу.
type Pricer struct {
	catalog domain.CatalogRepository
}

// NewPricer создаёт Pricer поверх каталога.
func NewPricer(catalog domain.CatalogRepository) *Pricer {
	return &Pricer{catalog: catalog}
}

// Snapshot читает текущие цены для строк корзины. Порядок строк сохраняется.
// Валюта берётся у первой строки; смешанные валюты не проверяются.
// Строка с товаром, которого больше нет в каталоге, даёт ErrProductNotFound.
func (p *Pricer) Snapshot(ctx context.Context, lines []domain.CartLine) (Snapshot, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := p.catalog.GetProducts(ctx, ids)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load products for pricing: %w", err)
	}

	return Compute(lines, products)
}

// Compute: чистая часть Snapshot: total = Σ unit_price × quantity.
func Compute(lines []domain.CartLine, products map[int64]domain.Product) (Snapshot, error) {
	snap := Snapshot{
		Lines:    make([]Line, 0, len(lines)),
		Currency: domain.DefaultCurrency,
	}

	for i, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, line.ProductID)
		}
		if i == 0 && product.Currency != "" {
			snap.Currency = product.Currency
		}
		snap.Lines = append(snap.Lines, Line{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceMinor: product.PriceMinor,
		})
		snap.TotalMinor += product.PriceMinor * int64(line.Quantity)
	}

	return snap, nil
}
