package cart

import (
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CheckStock проверяет, что запрошенное количество не превышает остаток товара.
// Вызывается только при upsert; на checkout остаток повторно не проверяется.
func CheckStock(product domain.Product, requested int32) error {
	if requested > product.Stock {
		return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, requested, product.Stock)
	}
	return nil
}
