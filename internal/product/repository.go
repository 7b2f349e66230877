package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tajabazar-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// SnapshotIDs returns all product ids at a point in time, for batch
	// jobs that must not chase a moving result set.
	SnapshotIDs(ctx context.Context) ([]string, error)

	// RecomputeFlags rewrites the derived promotional flags of one
	// product. Safe to re-run; the update is a pure function of the row.
	RecomputeFlags(ctx context.Context, id string, newArrivalWindow time.Duration) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.name, p.slug, p.description, p.category_id,
	p.price, p.sale_price, p.stock, p.unit, p.images,
	p.is_featured, p.is_on_sale, p.is_new_arrival,
	p.bgf_buy, p.bgf_get, p.bgf_free_product,
	p.is_active, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	var (
		p       Product
		images  pq.StringArray
		bgfBuy  sql.NullInt64
		bgfGet  sql.NullInt64
		bgfName sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID,
		&p.Price, &p.SalePrice, &p.Stock, &p.Unit, &images,
		&p.IsFeatured, &p.IsOnSale, &p.IsNewArrival,
		&bgfBuy, &bgfGet, &bgfName,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Images = images
	if bgfBuy.Valid && bgfGet.Valid {
		p.BuyGetFree = &BuyGetFree{
			Buy:             int(bgfBuy.Int64),
			Get:             int(bgfGet.Int64),
			FreeProductName: bgfName.String,
		}
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product failed: %w", err)
	}

	if err := r.attachVariants(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get product failed: %w", err)
	}

	if err := r.attachVariants(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Product, int64, error) {
	finalLimit := int32(20)
	finalPage := int32(1)
	if filter.Limit > 0 {
		finalLimit = filter.Limit
	}
	if filter.Page > 0 {
		finalPage = filter.Page
	}
	finalOffset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)

	where := []string{}
	args := []interface{}{}

	if len(filter.CategoryIDs) > 0 {
		where = append(where, fmt.Sprintf("p.category_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.CategoryIDs))
	}
	if filter.MinPrice != nil {
		where = append(where, fmt.Sprintf("COALESCE(p.sale_price, p.price) >= $%d", len(args)+1))
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where = append(where, fmt.Sprintf("COALESCE(p.sale_price, p.price) <= $%d", len(args)+1))
		args = append(args, *filter.MaxPrice)
	}
	if filter.Featured != nil {
		where = append(where, fmt.Sprintf("p.is_featured = $%d", len(args)+1))
		args = append(args, *filter.Featured)
	}
	if filter.OnSale != nil {
		where = append(where, fmt.Sprintf("p.is_on_sale = $%d", len(args)+1))
		args = append(args, *filter.OnSale)
	}
	if filter.NewArrival != nil {
		where = append(where, fmt.Sprintf("p.is_new_arrival = $%d", len(args)+1))
		args = append(args, *filter.NewArrival)
	}
	if filter.Search != nil && *filter.Search != "" {
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter.Search+"%")
	}
	if filter.ActiveOnly {
		where = append(where, "p.is_active = TRUE")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM products p` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("DB count failed List", zap.Error(err))
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products p` + whereClause
	query += " ORDER BY p.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, finalOffset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed List", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// attachVariants loads variants for all given products in one query.
func (r *repository) attachVariants(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	query := `
		SELECT id, product_id, name, price, sale_price, stock, sku
		FROM variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load variants failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.SalePrice, &v.Stock, &v.SKU); err != nil {
			return fmt.Errorf("scan variant failed: %w", err)
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("product_name", p.Name),
		zap.String("slug", p.Slug),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (
			id, name, slug, description, category_id,
			price, sale_price, stock, unit, images,
			is_featured, is_on_sale, is_new_arrival,
			bgf_buy, bgf_get, bgf_free_product, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at
	`

	var bgfBuy, bgfGet interface{}
	var bgfName interface{}
	if p.BuyGetFree != nil {
		bgfBuy, bgfGet, bgfName = p.BuyGetFree.Buy, p.BuyGetFree.Get, p.BuyGetFree.FreeProductName
	}

	err = tx.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID,
		p.Price, p.SalePrice, p.Stock, p.Unit, pq.Array(p.Images),
		p.IsFeatured, p.IsOnSale, p.IsNewArrival,
		bgfBuy, bgfGet, bgfName, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrSlugTaken
		}
		log.Error("Insert product failed", zap.Error(err))
		return fmt.Errorf("insert product failed: %w", err)
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		v.ProductID = p.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO variants (id, product_id, name, price, sale_price, stock, sku)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, v.ID, v.ProductID, v.Name, v.Price, v.SalePrice, v.Stock, v.SKU)
		if err != nil {
			log.Error("Insert variant failed", zap.Error(err))
			return fmt.Errorf("insert variant failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bgfBuy, bgfGet interface{}
	var bgfName interface{}
	if p.BuyGetFree != nil {
		bgfBuy, bgfGet, bgfName = p.BuyGetFree.Buy, p.BuyGetFree.Get, p.BuyGetFree.FreeProductName
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $2, slug = $3, description = $4, category_id = $5,
		    price = $6, sale_price = $7, stock = $8, unit = $9, images = $10,
		    is_featured = $11, is_on_sale = $12, is_new_arrival = $13,
		    bgf_buy = $14, bgf_get = $15, bgf_free_product = $16,
		    is_active = $17, updated_at = NOW()
		WHERE id = $1
	`,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID,
		p.Price, p.SalePrice, p.Stock, p.Unit, pq.Array(p.Images),
		p.IsFeatured, p.IsOnSale, p.IsNewArrival,
		bgfBuy, bgfGet, bgfName, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update product failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}

	// Variants are replaced wholesale on edit.
	if _, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("replace variants failed: %w", err)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		v.ProductID = p.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO variants (id, product_id, name, price, sale_price, stock, sku)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, v.ID, v.ProductID, v.Name, v.Price, v.SalePrice, v.Stock, v.SKU)
		if err != nil {
			return fmt.Errorf("replace variants failed: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) SnapshotIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot ids failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) RecomputeFlags(ctx context.Context, id string, newArrivalWindow time.Duration) error {
	// is_on_sale follows sale price presence on the product or any
	// variant; is_new_arrival follows the created_at window.
	query := `
		UPDATE products p
		SET is_on_sale = (
		        (p.sale_price IS NOT NULL AND p.sale_price < p.price)
		        OR EXISTS (
		            SELECT 1 FROM variants v
		            WHERE v.product_id = p.id
		              AND v.sale_price IS NOT NULL AND v.sale_price < v.price
		        )
		    ),
		    is_new_arrival = (p.created_at >= NOW() - $2::interval),
		    updated_at = NOW()
		WHERE p.id = $1
	`

	interval := fmt.Sprintf("%d seconds", int(newArrivalWindow.Seconds()))
	if _, err := r.db.ExecContext(ctx, query, id, interval); err != nil {
		return fmt.Errorf("recompute flags failed: %w", err)
	}
	return nil
}
