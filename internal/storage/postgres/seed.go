package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// SeedCatalog добавляет демо-каталог, если таблица товаров пуста. Все вставки в одной транзакции.
func (s *Store) SeedCatalog(ctx context.Context, data domain.CatalogSeed) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var hasProducts bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products)`).Scan(&hasProducts); err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	if hasProducts {
		return tx.Rollback()
	}

	for _, c := range data.Categories {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO categories (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
	}

	for _, p := range data.Products {
		currency := p.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO products (category_id, name, description, price_minor, currency, image_url, stock)
			VALUES ((SELECT id FROM categories WHERE slug = $1), $2, $3, $4, $5, $6, $7)
		`, p.CategorySlug, p.Name, p.Description, p.PriceMinor, currency, p.ImageURL, p.Stock); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}

	for _, l := range data.Locations {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO stores (name, address, lat, lng) VALUES ($1, $2, $3, $4)
		`, l.Name, l.Address, l.Lat, l.Lng); err != nil {
			return fmt.Errorf("seed store %s: %w", l.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
