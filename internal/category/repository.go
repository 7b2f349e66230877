package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tajabazar-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Category, error)
	GetChildren(ctx context.Context, parentID *string) ([]*Category, error)
	List(ctx context.Context, filter ListFilter) ([]*Category, error)
	Insert(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	UpdateLevel(ctx context.Context, id string, level int) error
	HasChildren(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name, slug, parent_id, level, is_active, display_order, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*Category, error) {
	var c Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Level,
		&c.IsActive, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category failed: %w", err)
	}
	return c, nil
}

func (r *repository) GetChildren(ctx context.Context, parentID *string) ([]*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []interface{}{}

	if parentID == nil {
		query += ` WHERE parent_id IS NULL`
	} else {
		query += ` WHERE parent_id = $1`
		args = append(args, *parentID)
	}

	query += ` ORDER BY display_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get children failed: %w", err)
	}
	defer rows.Close()

	var children []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `SELECT ` + categoryColumns + ` FROM categories`

	where := []string{}
	args := []interface{}{}

	if filter.Level != nil {
		where = append(where, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, *filter.Level)
	}
	if filter.ParentID != nil {
		where = append(where, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, *filter.ParentID)
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY level ASC, display_order ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed List", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Insert(ctx context.Context, c *Category) error {
	log := logger.FromCtx(ctx).With(
		zap.String("category_name", c.Name),
		zap.String("slug", c.Slug),
	)

	query := `
		INSERT INTO categories (id, name, slug, parent_id, level, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Slug, c.ParentID, c.Level, c.IsActive, c.DisplayOrder,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrSlugTaken
		}
		log.Error("Insert category failed", zap.Error(err))
		return fmt.Errorf("insert category failed: %w", err)
	}

	log.Info("category created", zap.String("category_id", c.ID))
	return nil
}

func (r *repository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, parent_id = $4, level = $5,
		    is_active = $6, display_order = $7, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Slug, c.ParentID, c.Level, c.IsActive, c.DisplayOrder,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrSlugTaken
		}
		return fmt.Errorf("update category failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateLevel(ctx context.Context, id string, level int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET level = $2, updated_at = NOW() WHERE id = $1`,
		id, level,
	)
	if err != nil {
		return fmt.Errorf("update level failed: %w", err)
	}
	return nil
}

func (r *repository) HasChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has children check failed: %w", err)
	}
	return exists, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
