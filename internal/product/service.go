package product

import (
	"context"
	"time"

	"tajabazar-be/internal/category"
	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewArrivalWindow is how long a product keeps its new-arrival flag.
const NewArrivalWindow = 14 * 24 * time.Hour

// Service defines the business logic for the catalog.
type Service interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	// List filters the catalog. A category filter is expanded to the full
	// descendant id set before querying, so nested subcategories match.
	List(ctx context.Context, categoryID *string, filter ListFilter) ([]*Product, int64, error)

	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, p *Product) error

	// RefreshPromotionalFlags recomputes derived flags over a snapshot of
	// the catalog. Idempotent; intended to run as a batch job.
	RefreshPromotionalFlags(ctx context.Context) (int, error)
}

type CreateInput struct {
	Name        string
	Description string
	CategoryID  string
	Price       float64
	SalePrice   *float64
	Stock       int
	Unit        string
	Images      []string
	Variants    []Variant
	IsFeatured  bool
	BuyGetFree  *BuyGetFree
}

type service struct {
	repo       Repository
	categories category.Service
}

func NewService(repo Repository, categories category.Service) Service {
	return &service{repo: repo, categories: categories}
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) List(ctx context.Context, categoryID *string, filter ListFilter) ([]*Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	if categoryID != nil && *categoryID != "" {
		ids, err := s.categories.ResolveDescendantIDs(ctx, *categoryID)
		if err != nil {
			log.Warn("category filter resolution failed", zap.Error(err))
			return nil, 0, err
		}
		filter.CategoryIDs = ids
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, 0, err
	}

	log.Info("List success", zap.Int("count", len(products)), zap.Int64("total", total))
	return products, total, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("name", input.Name),
	)
	log.Info("Create product started")

	p := &Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Stock:       input.Stock,
		Unit:        input.Unit,
		Images:      input.Images,
		Variants:    input.Variants,
		IsFeatured:  input.IsFeatured,
		BuyGetFree:  input.BuyGetFree,
		IsActive:    true,
	}

	p.IsOnSale = DiscountPercent(p.Price, p.SalePrice) > 0
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.New().String()
		}
		if DiscountPercent(p.Variants[i].Price, p.Variants[i].SalePrice) > 0 {
			p.IsOnSale = true
		}
	}
	p.IsNewArrival = true

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("Create product success", zap.String("product_id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, p *Product) error {
	return s.repo.Update(ctx, p)
}

func (s *service) RefreshPromotionalFlags(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RefreshPromotionalFlags"),
	)
	log.Info("promo flag refresh started")

	ids, err := s.repo.SnapshotIDs(ctx)
	if err != nil {
		log.Error("failed to snapshot product ids", zap.Error(err))
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if err := s.repo.RecomputeFlags(ctx, id, NewArrivalWindow); err != nil {
			log.Error("failed to recompute flags",
				zap.String("product_id", id),
				zap.Error(err),
			)
			return refreshed, err
		}
		refreshed++
	}

	log.Info("promo flag refresh success", zap.Int("refreshed", refreshed))
	return refreshed, nil
}
