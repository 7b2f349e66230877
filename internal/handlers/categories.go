package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tajabazar-be/internal/category"
	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/middleware"
	"tajabazar-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// CategoryHandlers exposes the category hierarchy endpoints.
type CategoryHandlers struct {
	svc category.Service
}

func NewCategoryHandlers(svc category.Service) *CategoryHandlers {
	return &CategoryHandlers{svc: svc}
}

func (h *CategoryHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/tree", h.tree)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CategoryHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter category.ListFilter
	filter.ActiveOnly = q.Get("all") != "true"
	if v, err := strconv.Atoi(q.Get("level")); err == nil && v > 0 {
		filter.Level = &v
	}
	if parentID := q.Get("parentId"); parentID != "" {
		filter.ParentID = utils.StrPtr(parentID)
	}

	categories, err := h.svc.List(ctx, filter)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandlers) tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rootID *string
	if v := r.URL.Query().Get("rootId"); v != "" {
		rootID = utils.StrPtr(v)
	}

	tree, err := h.svc.BuildTree(ctx, rootID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tree)
}

type createCategoryRequest struct {
	Name         string  `json:"name"`
	ParentID     *string `json:"parentId,omitempty"`
	DisplayOrder int     `json:"displayOrder"`
}

func (h *CategoryHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "category name is required")
		return
	}

	c, err := h.svc.Create(ctx, category.CreateInput{
		Name:         req.Name,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, c)
}

type updateCategoryRequest struct {
	Name         *string `json:"name,omitempty"`
	ParentID     *string `json:"parentId,omitempty"`
	MoveParent   bool    `json:"moveParent"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

func (h *CategoryHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.Update(ctx, chi.URLParam(r, "id"), category.UpdateInput{
		Name:         req.Name,
		ParentID:     req.ParentID,
		MoveParent:   req.MoveParent,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "category deleted")
}
