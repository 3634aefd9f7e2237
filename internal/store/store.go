package store

import (
	"context"
	"errors"

	"tokopos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateBarcode  = errors.New("duplicate barcode")
	ErrProductInUse      = errors.New("product is referenced by recorded sales")
)

// Repository is the transactional store behind the service layer. RecordSale
// and DeleteSale must each run as one atomic unit: either every write lands
// or none does.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	// RecordSale validates live stock for every item in order, then inserts
	// the sale with its items and decrements stock. On ErrInsufficientStock
	// nothing is written.
	RecordSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// DeleteSale restocks the recorded quantities and removes the sale with
	// its items. Items whose product no longer exists are skipped and
	// reported in the returned list.
	DeleteSale(ctx context.Context, id string) (*domain.Sale, []string, error)
}
