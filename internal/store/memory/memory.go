package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
)

// Store is an embedded single-writer store. Every write runs against a private
// copy of the state and is published only when the whole operation succeeds,
// so readers never observe a half-applied sale.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	products map[string]domain.Product
	barcodes map[string]string
	sales    map[string]domain.Sale
}

func New() *Store {
	return &Store{state: &state{
		products: make(map[string]domain.Product),
		barcodes: make(map[string]string),
		sales:    make(map[string]domain.Sale),
	}}
}

// NewSeeded returns a store preloaded with the demo catalog and sales.
func NewSeeded() *Store {
	s := New()
	_ = s.Seed(context.Background(), store.SeedProducts(), store.SeedSales())
	return s
}

// Seed loads products and sales into an empty store. It does nothing when the
// store already holds products.
func (s *Store) Seed(_ context.Context, products []domain.Product, sales []domain.Sale) error {
	return s.update(func(st *state) error {
		if len(st.products) > 0 {
			return nil
		}
		for _, p := range products {
			if _, taken := st.barcodes[p.Barcode]; taken {
				return fmt.Errorf("seed product %s: %w", p.ID, store.ErrDuplicateBarcode)
			}
			st.products[p.ID] = p
			st.barcodes[p.Barcode] = p.ID
		}
		for _, sale := range sales {
			st.sales[sale.ID] = cloneSale(sale)
		}
		return nil
	})
}

// update runs fn on a copy of the current state and swaps it in if fn
// returns nil.
func (s *Store) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (st *state) clone() *state {
	next := &state{
		products: make(map[string]domain.Product, len(st.products)),
		barcodes: make(map[string]string, len(st.barcodes)),
		sales:    make(map[string]domain.Sale, len(st.sales)),
	}
	for k, v := range st.products {
		next.products[k] = v
	}
	for k, v := range st.barcodes {
		next.barcodes[k] = v
	}
	// Sale items are never mutated in place, so the slices can be shared.
	for k, v := range st.sales {
		next.sales[k] = v
	}
	return next
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.state.products))
	for _, p := range s.state.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Name == b.Name {
			return strings.Compare(a.ID, b.ID)
		}
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.state.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err := s.update(func(st *state) error {
		if _, exists := st.products[product.ID]; exists {
			return fmt.Errorf("product %s already exists", product.ID)
		}
		if _, taken := st.barcodes[product.Barcode]; taken {
			return duplicateBarcode()
		}
		st.products[product.ID] = product
		st.barcodes[product.Barcode] = product.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err := s.update(func(st *state) error {
		existing, exists := st.products[product.ID]
		if !exists {
			return store.ErrNotFound
		}
		if owner, taken := st.barcodes[product.Barcode]; taken && owner != product.ID {
			return duplicateBarcode()
		}
		delete(st.barcodes, existing.Barcode)
		st.barcodes[product.Barcode] = product.ID
		st.products[product.ID] = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	return s.update(func(st *state) error {
		product, exists := st.products[id]
		if !exists {
			return store.ErrNotFound
		}
		for _, sale := range st.sales {
			for _, item := range sale.Items {
				if item.ProductID == id {
					return store.ErrProductInUse
				}
			}
		}
		delete(st.products, id)
		delete(st.barcodes, product.Barcode)
		return nil
	})
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.state.sales))
	for _, sale := range s.state.sales {
		sales = append(sales, cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.state.sales[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *Store) RecordSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || len(sale.Items) == 0 {
		return nil, store.ErrValidation
	}

	var saved domain.Sale
	err := s.update(func(st *state) error {
		if _, exists := st.sales[sale.ID]; exists {
			return fmt.Errorf("sale %s already exists", sale.ID)
		}

		items := make([]domain.SaleItem, 0, len(sale.Items))
		for _, item := range sale.Items {
			if item.Quantity < 1 {
				return store.ErrValidation
			}
			product, exists := st.products[item.ProductID]
			if !exists {
				return &store.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity, Missing: true}
			}
			if product.Stock < item.Quantity {
				return &store.InsufficientStockError{ProductID: item.ProductID, Available: product.Stock, Requested: item.Quantity}
			}
			product.Stock -= item.Quantity
			st.products[product.ID] = product

			item.SaleID = sale.ID
			items = append(items, item)
		}

		sale.Items = items
		st.sales[sale.ID] = sale
		saved = cloneSale(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) DeleteSale(_ context.Context, id string) (*domain.Sale, []string, error) {
	var (
		deleted  domain.Sale
		orphaned []string
	)
	err := s.update(func(st *state) error {
		sale, exists := st.sales[id]
		if !exists {
			return store.ErrNotFound
		}
		for _, item := range sale.Items {
			product, exists := st.products[item.ProductID]
			if !exists {
				orphaned = append(orphaned, item.ProductID)
				continue
			}
			product.Stock += item.Quantity
			st.products[product.ID] = product
		}
		delete(st.sales, id)
		deleted = cloneSale(sale)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &deleted, orphaned, nil
}

func validateProduct(product domain.Product) error {
	if product.ID == "" || product.Name == "" || product.Barcode == "" {
		return store.ErrValidation
	}
	if !product.PurchasePrice.IsPositive() || !product.SalePrice.IsPositive() || product.Stock < 0 {
		return store.ErrValidation
	}
	return nil
}

func duplicateBarcode() error {
	return store.NewFieldError(store.ErrDuplicateBarcode, "barcode", "A product with this barcode already exists.")
}

func cloneSale(src domain.Sale) domain.Sale {
	out := src
	out.Items = slices.Clone(src.Items)
	return out
}
