package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		barcode TEXT NOT NULL UNIQUE,
		purchase_price NUMERIC(12,2) NOT NULL CHECK (purchase_price > 0),
		sale_price NUMERIC(12,2) NOT NULL CHECK (sale_price > 0),
		stock INTEGER NOT NULL CHECK (stock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL,
		total NUMERIC(12,2) NOT NULL CHECK (total >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS sales_date_idx ON sales (date DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGSERIAL PRIMARY KEY,
		sale_id TEXT NOT NULL REFERENCES sales (id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		sale_price NUMERIC(12,2) NOT NULL CHECK (sale_price > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS sale_items_sale_id_idx ON sale_items (sale_id)`,
	`CREATE INDEX IF NOT EXISTS sale_items_product_id_idx ON sale_items (product_id)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
