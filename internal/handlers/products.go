package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/middleware"
	"tajabazar-be/internal/product"
	"tajabazar-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// ProductHandlers exposes catalog browsing and admin catalog management.
type ProductHandlers struct {
	svc product.Service
}

func NewProductHandlers(svc product.Service) *ProductHandlers {
	return &ProductHandlers{svc: svc}
}

func (h *ProductHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{slug}", h.getBySlug)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Post("/", h.create)
	})
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var categoryID *string
	if v := q.Get("category"); v != "" {
		categoryID = utils.StrPtr(v)
	}

	filter := product.ListFilter{ActiveOnly: true}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = utils.Float64Ptr(v)
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = utils.Float64Ptr(v)
	}
	if v := q.Get("featured"); v != "" {
		b := v == "true"
		filter.Featured = &b
	}
	if v := q.Get("onSale"); v != "" {
		b := v == "true"
		filter.OnSale = &b
	}
	if v := q.Get("newArrival"); v != "" {
		b := v == "true"
		filter.NewArrival = &b
	}
	if v := q.Get("search"); v != "" {
		filter.Search = utils.StrPtr(v)
	}
	filter.Limit, filter.Page = parsePagination(r)

	products, total, err := h.svc.List(ctx, categoryID, filter)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteList(w, http.StatusOK, products, httpx.Meta{
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (h *ProductHandlers) getBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.svc.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, p)
}

type createProductRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CategoryID  string              `json:"categoryId"`
	Price       float64             `json:"price"`
	SalePrice   *float64            `json:"salePrice,omitempty"`
	Stock       int                 `json:"stock"`
	Unit        string              `json:"unit"`
	Images      []string            `json:"images"`
	Variants    []product.Variant   `json:"variants,omitempty"`
	IsFeatured  bool                `json:"isFeatured"`
	BuyGetFree  *product.BuyGetFree `json:"buyGetFree,omitempty"`
}

func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.CategoryID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "product name and category are required")
		return
	}

	p, err := h.svc.Create(ctx, product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Unit:        req.Unit,
		Images:      req.Images,
		Variants:    req.Variants,
		IsFeatured:  req.IsFeatured,
		BuyGetFree:  req.BuyGetFree,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, p)
}
