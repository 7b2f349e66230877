package category

import (
	"context"
	"fmt"

	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for the category hierarchy.
type Service interface {
	// ResolveDescendantIDs returns id plus every transitive descendant id.
	// Catalog filtering uses this so a category match includes all nested
	// subcategories.
	ResolveDescendantIDs(ctx context.Context, id string) ([]string, error)

	// BuildTree returns the nested navigation view rooted at rootID, or
	// the full forest when rootID is nil.
	BuildTree(ctx context.Context, rootID *string) ([]*TreeNode, error)

	List(ctx context.Context, filter ListFilter) ([]*Category, error)
	Create(ctx context.Context, input CreateInput) (*Category, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ResolveDescendantIDs(ctx context.Context, id string) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	visited := map[string]bool{id: true}
	ids := []string{id}
	queue := []string{id}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.repo.GetChildren(ctx, &current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.ID] {
				// A revisited node means the parent graph is corrupt.
				// Fail closed instead of looping.
				return nil, fmt.Errorf("%w: at %s", ErrCycleDetected, child.ID)
			}
			visited[child.ID] = true
			ids = append(ids, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return ids, nil
}

func (s *service) BuildTree(ctx context.Context, rootID *string) ([]*TreeNode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "BuildTree"),
	)

	visited := map[string]bool{}
	nodes, err := s.buildSubtree(ctx, rootID, visited)
	if err != nil {
		log.Error("failed to build category tree", zap.Error(err))
		return nil, err
	}

	log.Info("BuildTree success", zap.Int("roots", len(nodes)))
	return nodes, nil
}

func (s *service) buildSubtree(ctx context.Context, parentID *string, visited map[string]bool) ([]*TreeNode, error) {
	children, err := s.repo.GetChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*TreeNode, 0, len(children))
	for _, c := range children {
		if visited[c.ID] {
			return nil, fmt.Errorf("%w: at %s", ErrCycleDetected, c.ID)
		}
		visited[c.ID] = true

		grandchildren, err := s.buildSubtree(ctx, &c.ID, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &TreeNode{Category: *c, Children: grandchildren})
	}
	return nodes, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Category, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("name", input.Name),
	)
	log.Info("Create category started")

	level := 1
	if input.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *input.ParentID)
		if err != nil {
			log.Warn("parent category lookup failed", zap.Error(err))
			return nil, err
		}
		level = parent.Level + 1
	}

	c := &Category{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Slug:         utils.Slugify(input.Name),
		ParentID:     input.ParentID,
		Level:        level,
		IsActive:     true,
		DisplayOrder: input.DisplayOrder,
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		log.Error("failed to create category", zap.Error(err))
		return nil, err
	}

	log.Info("Create category success", zap.String("category_id", c.ID))
	return c, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("category_id", id),
	)
	log.Info("Update category started")

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		c.Name = *input.Name
		c.Slug = utils.Slugify(*input.Name)
	}
	if input.DisplayOrder != nil {
		c.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}

	relevel := false
	if input.MoveParent {
		newLevel, err := s.resolveMoveLevel(ctx, c, input.ParentID)
		if err != nil {
			log.Warn("category move rejected", zap.Error(err))
			return nil, err
		}
		relevel = c.Level != newLevel || !samePtr(c.ParentID, input.ParentID)
		c.ParentID = input.ParentID
		c.Level = newLevel
	}

	if err := s.repo.Update(ctx, c); err != nil {
		log.Error("failed to update category", zap.Error(err))
		return nil, err
	}

	if relevel {
		if err := s.relevelSubtree(ctx, c.ID, c.Level); err != nil {
			log.Error("failed to relevel subtree", zap.Error(err))
			return nil, err
		}
	}

	log.Info("Update category success")
	return c, nil
}

// resolveMoveLevel validates a parent change and returns the moved
// category's new level. Moving a category under itself or one of its own
// descendants would orphan the subtree, so the ancestor chain of the
// proposed parent is walked first.
func (s *service) resolveMoveLevel(ctx context.Context, c *Category, newParentID *string) (int, error) {
	if newParentID == nil {
		return 1, nil
	}
	if *newParentID == c.ID {
		return 0, ErrCycleDetected
	}

	parent, err := s.repo.GetByID(ctx, *newParentID)
	if err != nil {
		return 0, err
	}

	seen := map[string]bool{}
	ancestor := parent
	for ancestor.ParentID != nil {
		if *ancestor.ParentID == c.ID {
			return 0, ErrCycleDetected
		}
		if seen[*ancestor.ParentID] {
			return 0, fmt.Errorf("%w: at %s", ErrCycleDetected, *ancestor.ParentID)
		}
		seen[*ancestor.ParentID] = true

		ancestor, err = s.repo.GetByID(ctx, *ancestor.ParentID)
		if err != nil {
			return 0, err
		}
	}

	return parent.Level + 1, nil
}

// relevelSubtree rewrites descendant levels after a move.
func (s *service) relevelSubtree(ctx context.Context, id string, level int) error {
	children, err := s.repo.GetChildren(ctx, &id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.repo.UpdateLevel(ctx, child.ID, level+1); err != nil {
			return err
		}
		if err := s.relevelSubtree(ctx, child.ID, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.String("category_id", id),
	)
	log.Info("Delete category started")

	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		log.Warn("delete rejected: category has children")
		return ErrHasChildren
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error("failed to delete category", zap.Error(err))
		return err
	}

	log.Info("Delete category success")
	return nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
