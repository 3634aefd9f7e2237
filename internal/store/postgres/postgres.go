package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
)

type Store struct {
	db *sqlx.DB
}

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

func New(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns < 1 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns < 1 {
		opts.MaxIdleConns = 4
	}
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// beginWrite opens a write transaction holding the self-conflicting sales
// table lock. Writers take it before any product row lock; plain readers are
// not blocked.
func (s *Store) beginWrite(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `LOCK TABLE sales, sale_items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return tx, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, 64)
	err := s.db.SelectContext(ctx, &products, `
		SELECT id, name, barcode, purchase_price, sale_price, stock
		FROM products
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.GetContext(ctx, &product, `
		SELECT id, name, barcode, purchase_price, sale_price, stock
		FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Barcode == "" || product.Stock < 0 {
		return nil, store.ErrValidation
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (id, name, barcode, purchase_price, sale_price, stock)
		VALUES (:id, :name, :barcode, :purchase_price, :sale_price, :stock)
	`, product)
	if err != nil {
		if isUniqueViolationOn(err, "products_barcode_key") {
			return nil, duplicateBarcode()
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Barcode == "" || product.Stock < 0 {
		return nil, store.ErrValidation
	}

	tx, err := s.beginWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx, `
		UPDATE products
		SET name = :name, barcode = :barcode, purchase_price = :purchase_price,
			sale_price = :sale_price, stock = :stock
		WHERE id = :id
	`, product)
	if err != nil {
		if isUniqueViolationOn(err, "products_barcode_key") {
			return nil, duplicateBarcode()
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	tx, err := s.beginWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var referenced bool
	if err := tx.GetContext(ctx, &referenced, `
		SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)
	`, id); err != nil {
		return err
	}
	if referenced {
		return store.ErrProductInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProductInUse
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales := make([]domain.Sale, 0, 64)
	if err := s.db.SelectContext(ctx, &sales, `
		SELECT id, date, total
		FROM sales
		ORDER BY date DESC, id DESC
	`); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	items := make([]domain.SaleItem, 0, len(sales)*2)
	if err := s.db.SelectContext(ctx, &items, `
		SELECT sale_id, product_id, product_name, quantity, sale_price
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY id ASC
	`, ids); err != nil {
		return nil, err
	}

	bySale := make(map[string][]domain.SaleItem, len(sales))
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Date = sales[i].Date.UTC()
		sales[i].Items = bySale[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []domain.SaleItem{}
		}
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return getSale(ctx, s.db, id, false)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func getSale(ctx context.Context, q queryer, id string, forUpdate bool) (*domain.Sale, error) {
	query := `SELECT id, date, total FROM sales WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var sale domain.Sale
	if err := q.GetContext(ctx, &sale, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.Date = sale.Date.UTC()

	sale.Items = make([]domain.SaleItem, 0, 4)
	if err := q.SelectContext(ctx, &sale.Items, `
		SELECT sale_id, product_id, product_name, quantity, sale_price
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id ASC
	`, id); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) RecordSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || len(sale.Items) == 0 {
		return nil, store.ErrValidation
	}

	tx, err := s.beginWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	productIDs := uniqueProductIDs(sale.Items)
	type stockRow struct {
		ID    string `db:"id"`
		Stock int    `db:"stock"`
	}
	rows := make([]stockRow, 0, len(productIDs))
	if err := tx.SelectContext(ctx, &rows, `
		SELECT id, stock
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, productIDs); err != nil {
		return nil, err
	}
	stock := make(map[string]int, len(rows))
	for _, row := range rows {
		stock[row.ID] = row.Stock
	}

	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrValidation
		}
		available, exists := stock[item.ProductID]
		if !exists {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity, Missing: true}
		}
		if available < item.Quantity {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID, Available: available, Requested: item.Quantity}
		}
		stock[item.ProductID] = available - item.Quantity
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, date, total)
		VALUES ($1, $2, $3)
	`, sale.ID, sale.Date, sale.Total); err != nil {
		return nil, err
	}

	items := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		item.SaleID = sale.ID
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, quantity, sale_price)
			VALUES (:sale_id, :product_id, :product_name, :quantity, :sale_price)
		`, item); err != nil {
			return nil, err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity, Missing: true}
		}
		items = append(items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sale.Items = items
	return &sale, nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) (*domain.Sale, []string, error) {
	tx, err := s.beginWrite(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sale, err := getSale(ctx, tx, id, true)
	if err != nil {
		return nil, nil, err
	}

	var orphaned []string
	for _, item := range sale.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1
			WHERE id = $2
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, nil, err
		}
		if affected == 0 {
			orphaned = append(orphaned, item.ProductID)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return nil, nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return sale, orphaned, nil
}

// Seed loads products and sales when the products table is empty.
func (s *Store) Seed(ctx context.Context, products []domain.Product, sales []domain.Sale) error {
	tx, err := s.beginWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range products {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO products (id, name, barcode, purchase_price, sale_price, stock)
			VALUES (:id, :name, :barcode, :purchase_price, :sale_price, :stock)
		`, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, sale := range sales {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sales (id, date, total) VALUES ($1, $2, $3)
		`, sale.ID, sale.Date, sale.Total); err != nil {
			return fmt.Errorf("seed sale %s: %w", sale.ID, err)
		}
		for _, item := range sale.Items {
			item.SaleID = sale.ID
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO sale_items (sale_id, product_id, product_name, quantity, sale_price)
				VALUES (:sale_id, :product_id, :product_name, :quantity, :sale_price)
			`, item); err != nil {
				return fmt.Errorf("seed sale %s item: %w", sale.ID, err)
			}
		}
	}

	return tx.Commit()
}

func uniqueProductIDs(items []domain.SaleItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func duplicateBarcode() error {
	return store.NewFieldError(store.ErrDuplicateBarcode, "barcode", "A product with this barcode already exists.")
}

func isUniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
