package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/query"
)

const productColumns = "id, title, slug, description, unit_price, inventory, collection_id, last_update"

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

// selectProducts выполняет выборку по дереву условий с опциональной сортировкой
// и лимитом. Все фильтрующие методы сводятся к этому запросу.
func (r *productRepository) selectProducts(cond query.Cond, orderBy string, limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM products", productColumns)

	var args []any
	if cond != nil {
		where, condArgs := cond.SQL(0)
		b.WriteString(" WHERE ")
		b.WriteString(where)
		args = condArgs
	}
	if orderBy != "" {
		b.WriteString(" ")
		b.WriteString(orderBy)
	}
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var p domain.Product
	if err := rows.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description,
		&p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate,
	); err != nil {
		return domain.Product{}, fmt.Errorf("scan product row: %w", err)
	}
	return p, nil
}

func (r *productRepository) All() ([]domain.Product, error) {
	return r.selectProducts(nil, query.OrderBy(query.Asc("id")), 0)
}

func (r *productRepository) Exists(id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func (r *productRepository) SearchTitle(needle string) ([]domain.Product, error) {
	return r.selectProducts(
		query.Contains("title", needle),
		query.OrderBy(query.Asc("title")),
		0,
	)
}

func (r *productRepository) LowStockCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(
		query.And(
			query.Lt("inventory", maxInventory),
			query.Lt("unit_price", maxPrice),
		),
		query.OrderBy(query.Asc("id")),
		0,
	)
}

func (r *productRepository) LowStockOrCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(
		query.Or(
			query.Lt("inventory", maxInventory),
			query.Lt("unit_price", maxPrice),
		),
		query.OrderBy(query.Asc("id")),
		0,
	)
}

func (r *productRepository) LowStockNotCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(
		query.And(
			query.Lt("inventory", maxInventory),
			query.Not(query.Lt("unit_price", maxPrice)),
		),
		query.OrderBy(query.Asc("id")),
		0,
	)
}

func (r *productRepository) InventoryEqualsPrice() ([]domain.Product, error) {
	return r.selectProducts(
		query.EqField("inventory", "unit_price"),
		query.OrderBy(query.Asc("id")),
		0,
	)
}

func (r *productRepository) Cheapest() (domain.Product, error) {
	return r.selectOne(query.OrderBy(query.Asc("unit_price"), query.Asc("id")))
}

func (r *productRepository) MostExpensive() (domain.Product, error) {
	return r.selectOne(query.OrderBy(query.Desc("unit_price"), query.Asc("id")))
}

func (r *productRepository) selectOne(orderBy string) (domain.Product, error) {
	products, err := r.selectProducts(nil, orderBy, 1)
	if err != nil {
		return domain.Product{}, err
	}
	if len(products) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return products[0], nil
}

func (r *productRepository) Refs() ([]domain.ProductRef, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, c.title
		FROM products p
		JOIN collections c ON c.id = p.collection_id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select product refs: %w", err)
	}
	defer rows.Close()

	refs := make([]domain.ProductRef, 0)
	for rows.Next() {
		var ref domain.ProductRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.CollectionTitle); err != nil {
			return nil, fmt.Errorf("scan product ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product refs: %w", err)
	}

	return refs, nil
}

func (r *productRepository) Ordered() ([]domain.Product, error) {
	return r.selectProducts(
		query.InSubquery("id", "SELECT DISTINCT product_id FROM order_items"),
		query.OrderBy(query.Asc("title")),
		0,
	)
}

func (r *productRepository) AllWithCollections() ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.slug, p.description, p.unit_price, p.inventory,
		       p.collection_id, p.last_update,
		       c.id, c.title, c.featured_product_id
		FROM products p
		JOIN collections c ON c.id = p.collection_id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select products with collections: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p domain.Product
			c domain.Collection
		)
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory,
			&p.CollectionID, &p.LastUpdate,
			&c.ID, &c.Title, &c.FeaturedProductID,
		); err != nil {
			return nil, fmt.Errorf("scan product with collection: %w", err)
		}
		p.Collection = &c
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products with collections: %w", err)
	}

	return products, nil
}

func (r *productRepository) AllWithPromotions() ([]domain.Product, error) {
	products, err := r.AllWithCollections()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Акции дочитываются одним запросом на всю выборку,
	// а не по запросу на каждый товар.
	rows, err := r.db.QueryContext(ctx, `
		SELECT pp.product_id, pr.id, pr.description, pr.discount
		FROM product_promotions pp
		JOIN promotions pr ON pr.id = pp.promotion_id
		ORDER BY pp.product_id, pr.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select product promotions: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[int64][]domain.Promotion)
	for rows.Next() {
		var (
			productID int64
			promo     domain.Promotion
		)
		if err := rows.Scan(&productID, &promo.ID, &promo.Description, &promo.Discount); err != nil {
			return nil, fmt.Errorf("scan product promotion: %w", err)
		}
		byProduct[productID] = append(byProduct[productID], promo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product promotions: %w", err)
	}

	for i := range products {
		products[i].Promotions = byProduct[products[i].ID]
	}

	return products, nil
}

func (r *productRepository) Stats() (domain.ProductStats, error) {
	return r.stats(nil)
}

func (r *productRepository) CollectionStats(collectionID int64) (domain.ProductStats, error) {
	return r.stats(query.Eq("collection_id", collectionID))
}

func (r *productRepository) stats(cond query.Cond) (domain.ProductStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sqlText := `
		SELECT COUNT(id),
		       COALESCE(MIN(unit_price), 0),
		       COALESCE(MAX(unit_price), 0),
		       COALESCE(AVG(unit_price), 0),
		       COALESCE(SUM(inventory), 0)
		FROM products
	`
	var args []any
	if cond != nil {
		where, condArgs := cond.SQL(0)
		sqlText += " WHERE " + where
		args = condArgs
	}

	var stats domain.ProductStats
	err := r.db.QueryRowContext(ctx, sqlText, args...).Scan(
		&stats.Count, &stats.MinPrice, &stats.MaxPrice, &stats.AvgPrice, &stats.SumInventory,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductStats{}, nil
		}
		return domain.ProductStats{}, fmt.Errorf("aggregate product stats: %w", err)
	}

	return stats, nil
}

func (r *productRepository) WithDiscount(factor decimal.Decimal) ([]domain.PricedProduct, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Вычисляемая колонка строится тем же деревом выражений, что и условия.
	discounted, args := query.Mul(query.F("unit_price"), query.V(factor)).Expr(0)
	sqlText := fmt.Sprintf(`
		SELECT %s, ROUND(%s, 2) AS discounted_price
		FROM products
		ORDER BY id
	`, productColumns, discounted)

	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("select discounted products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.PricedProduct, 0)
	for rows.Next() {
		var p domain.PricedProduct
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Description,
			&p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate,
			&p.DiscountedPrice,
		); err != nil {
			return nil, fmt.Errorf("scan discounted product: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discounted products: %w", err)
	}

	return result, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
