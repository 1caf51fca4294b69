package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/query"
)

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository создаёт PostgreSQL-реализацию CollectionRepository.
func NewCollectionRepository(store *Store) domain.CollectionRepository {
	return &collectionRepository{db: store.DB()}
}

func (r *collectionRepository) Get(id int64) (domain.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var c domain.Collection
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, featured_product_id
		FROM collections
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.FeaturedProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, domain.ErrCollectionNotFound
		}
		return domain.Collection{}, fmt.Errorf("select collection: %w", err)
	}

	return c, nil
}

func (r *collectionRepository) Save(c domain.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE collections
		SET title = $1,
		    featured_product_id = $2
		WHERE id = $3
	`, c.Title, c.FeaturedProductID, c.ID)
	if err != nil {
		return fmt.Errorf("update collection: %w", translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCollectionNotFound
	}

	return nil
}

// ClearFeatured сбрасывает featured-товар напрямую одним UPDATE,
// без выборки записи (массовый вариант обновления).
func (r *collectionRepository) ClearFeatured(id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE collections
		SET featured_product_id = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return 0, fmt.Errorf("clear featured product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}

func (r *collectionRepository) Delete(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCollectionNotFound
	}

	return nil
}

func (r *collectionRepository) DeleteAbove(id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	where, args := query.Gt("id", id).SQL(0)
	res, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete collections: %w", translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}

var _ domain.CollectionRepository = (*collectionRepository)(nil)
