package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/openshelf/inventory-ledger/internal/domain/shop"
)

const shopColumns = `id, name, address, phone, discount_kazi, discount_harvest`

const (
	listShopsSQL = `SELECT ` + shopColumns + ` FROM shops ORDER BY name`

	getShopSQL = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`

	insertShopSQL = `INSERT INTO shops (id, name, address, phone, discount_kazi, discount_harvest)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateShopSQL = `UPDATE shops SET
		name = $2, address = $3, phone = $4, discount_kazi = $5, discount_harvest = $6
		WHERE id = $1`

	deleteShopSQL = `DELETE FROM shops WHERE id = $1`
)

var _ shop.Repository = (*ShopRepository)(nil)

// ShopRepository implements shop.Repository backed by PostgreSQL.
type ShopRepository struct {
	db DB
}

// NewShopRepository returns a ShopRepository that uses the given pool.
func NewShopRepository(db DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// List returns all shops ordered by name.
func (r *ShopRepository) List(ctx context.Context) ([]shop.Shop, error) {
	rows, err := r.db.Query(ctx, listShopsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}
	return pgx.CollectRows(rows, scanShop)
}

// GetByID returns a single shop by its identifier.
func (r *ShopRepository) GetByID(ctx context.Context, id string) (*shop.Shop, error) {
	return getShop(ctx, r.db, id)
}

// Create persists a new shop.
func (r *ShopRepository) Create(ctx context.Context, s *shop.Shop) error {
	_, err := r.db.Exec(ctx, insertShopSQL,
		s.ID, s.Name, s.Address, s.Phone, s.DiscountKazi, s.DiscountHarvest,
	)
	if err != nil {
		return fmt.Errorf("creating shop %q: %w", s.ID, err)
	}
	return nil
}

// Update persists a shop's fields.
func (r *ShopRepository) Update(ctx context.Context, s *shop.Shop) error {
	tag, err := r.db.Exec(ctx, updateShopSQL,
		s.ID, s.Name, s.Address, s.Phone, s.DiscountKazi, s.DiscountHarvest,
	)
	if err != nil {
		return fmt.Errorf("updating shop %q: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

// Delete removes a shop.
func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteShopSQL, id)
	if err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

func getShop(ctx context.Context, db DB, id string) (*shop.Shop, error) {
	rows, err := db.Query(ctx, getShopSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanShop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shop.ErrNotFound
		}
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}
	return &s, nil
}

func scanShop(row pgx.CollectableRow) (shop.Shop, error) {
	var s shop.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.DiscountKazi, &s.DiscountHarvest)
	return s, err
}
