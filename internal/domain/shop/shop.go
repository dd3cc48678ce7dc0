package shop

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested shop does not exist.
var ErrNotFound = errors.New("shop not found")

// Shop represents a retail customer. DiscountKazi and DiscountHarvest are the
// two configured discount rates (percentages, 0-100) selectable per invoice.
type Shop struct {
	ID              string
	Name            string
	Address         string
	Phone           string
	DiscountKazi    decimal.Decimal
	DiscountHarvest decimal.Decimal
}

// Repository defines persistence operations for shops.
type Repository interface {
	List(ctx context.Context) ([]Shop, error)
	GetByID(ctx context.Context, id string) (*Shop, error)
	Create(ctx context.Context, s *Shop) error
	Update(ctx context.Context, s *Shop) error
	Delete(ctx context.Context, id string) error
}
