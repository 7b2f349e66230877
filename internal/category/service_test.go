package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) GetChildren(ctx context.Context, parentID *string) ([]*Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, c *Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, c *Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) UpdateLevel(ctx context.Context, id string, level int) error {
	args := m.Called(ctx, id, level)
	return args.Error(0)
}

func (m *MockRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func cat(id string, parentID *string, level int) *Category {
	return &Category{ID: id, Name: id, Slug: id, ParentID: parentID, Level: level, IsActive: true}
}

// --- Tests ---

func TestResolveDescendantIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("LinearChain", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		// A -> B -> C
		repo.On("GetByID", ctx, "A").Return(cat("A", nil, 1), nil)
		repo.On("GetChildren", ctx, strPtr("A")).Return([]*Category{cat("B", strPtr("A"), 2)}, nil)
		repo.On("GetChildren", ctx, strPtr("B")).Return([]*Category{cat("C", strPtr("B"), 3)}, nil)
		repo.On("GetChildren", ctx, strPtr("C")).Return([]*Category{}, nil)

		ids, err := svc.ResolveDescendantIDs(ctx, "A")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B", "C"}, ids)
	})

	t.Run("Subtree", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "B").Return(cat("B", strPtr("A"), 2), nil)
		repo.On("GetChildren", ctx, strPtr("B")).Return([]*Category{cat("C", strPtr("B"), 3)}, nil)
		repo.On("GetChildren", ctx, strPtr("C")).Return([]*Category{}, nil)

		ids, err := svc.ResolveDescendantIDs(ctx, "B")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"B", "C"}, ids)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "ghost").Return(nil, ErrNotFound)

		_, err := svc.ResolveDescendantIDs(ctx, "ghost")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("CycleFailsClosed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		// Corrupt data: A -> B -> A
		repo.On("GetByID", ctx, "A").Return(cat("A", nil, 1), nil)
		repo.On("GetChildren", ctx, strPtr("A")).Return([]*Category{cat("B", strPtr("A"), 2)}, nil)
		repo.On("GetChildren", ctx, strPtr("B")).Return([]*Category{cat("A", strPtr("B"), 3)}, nil)

		_, err := svc.ResolveDescendantIDs(ctx, "A")
		assert.True(t, errors.Is(err, ErrCycleDetected))
	})
}

func TestBuildTree(t *testing.T) {
	ctx := context.Background()

	t.Run("NestedOrdering", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetChildren", ctx, (*string)(nil)).Return([]*Category{
			cat("fruits", nil, 1),
			cat("vegetables", nil, 1),
		}, nil)
		repo.On("GetChildren", ctx, strPtr("fruits")).Return([]*Category{cat("citrus", strPtr("fruits"), 2)}, nil)
		repo.On("GetChildren", ctx, strPtr("citrus")).Return([]*Category{}, nil)
		repo.On("GetChildren", ctx, strPtr("vegetables")).Return([]*Category{}, nil)

		tree, err := svc.BuildTree(ctx, nil)
		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, "fruits", tree[0].ID)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, "citrus", tree[0].Children[0].ID)
		assert.Empty(t, tree[1].Children)
	})

	t.Run("CycleFailsClosed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetChildren", ctx, (*string)(nil)).Return([]*Category{cat("A", nil, 1)}, nil)
		repo.On("GetChildren", ctx, strPtr("A")).Return([]*Category{cat("A", strPtr("A"), 2)}, nil)

		_, err := svc.BuildTree(ctx, nil)
		assert.True(t, errors.Is(err, ErrCycleDetected))
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("RootLevelOne", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Insert", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.Level == 1 && c.Slug == "fresh-fruits" && c.IsActive
		})).Return(nil)

		c, err := svc.Create(ctx, CreateInput{Name: "Fresh Fruits"})
		require.NoError(t, err)
		assert.Equal(t, 1, c.Level)
		assert.NotEmpty(t, c.ID)
	})

	t.Run("ChildLevelFromParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "parent").Return(cat("parent", nil, 2), nil)
		repo.On("Insert", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.Level == 3 && c.ParentID != nil && *c.ParentID == "parent"
		})).Return(nil)

		c, err := svc.Create(ctx, CreateInput{Name: "Citrus", ParentID: strPtr("parent")})
		require.NoError(t, err)
		assert.Equal(t, 3, c.Level)
	})

	t.Run("MissingParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "ghost").Return(nil, ErrNotFound)

		_, err := svc.Create(ctx, CreateInput{Name: "Citrus", ParentID: strPtr("ghost")})
		assert.True(t, errors.Is(err, ErrNotFound))
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestUpdate_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("MoveUnderOwnDescendantRejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		// A -> B; try to move A under B
		repo.On("GetByID", ctx, "A").Return(cat("A", nil, 1), nil)
		repo.On("GetByID", ctx, "B").Return(cat("B", strPtr("A"), 2), nil)

		_, err := svc.Update(ctx, "A", UpdateInput{ParentID: strPtr("B"), MoveParent: true})
		assert.True(t, errors.Is(err, ErrCycleDetected))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("MoveUnderSelfRejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "A").Return(cat("A", nil, 1), nil)

		_, err := svc.Update(ctx, "A", UpdateInput{ParentID: strPtr("A"), MoveParent: true})
		assert.True(t, errors.Is(err, ErrCycleDetected))
	})

	t.Run("MoveRelevelsSubtree", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		// B (root, level 1) with child C moves under A (level 1).
		repo.On("GetByID", ctx, "B").Return(cat("B", nil, 1), nil)
		repo.On("GetByID", ctx, "A").Return(cat("A", nil, 1), nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.ID == "B" && c.Level == 2 && c.ParentID != nil && *c.ParentID == "A"
		})).Return(nil)
		repo.On("GetChildren", ctx, strPtr("B")).Return([]*Category{cat("C", strPtr("B"), 2)}, nil)
		repo.On("UpdateLevel", ctx, "C", 3).Return(nil)
		repo.On("GetChildren", ctx, strPtr("C")).Return([]*Category{}, nil)

		c, err := svc.Update(ctx, "B", UpdateInput{ParentID: strPtr("A"), MoveParent: true})
		require.NoError(t, err)
		assert.Equal(t, 2, c.Level)
		repo.AssertCalled(t, "UpdateLevel", ctx, "C", 3)
	})

	t.Run("MoveToRoot", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, "B").Return(cat("B", strPtr("A"), 2), nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.Level == 1 && c.ParentID == nil
		})).Return(nil)
		repo.On("GetChildren", ctx, strPtr("B")).Return([]*Category{}, nil)

		c, err := svc.Update(ctx, "B", UpdateInput{ParentID: nil, MoveParent: true})
		require.NoError(t, err)
		assert.Equal(t, 1, c.Level)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("HasChildren", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("HasChildren", ctx, "A").Return(true, nil)

		err := svc.Delete(ctx, "A")
		assert.True(t, errors.Is(err, ErrHasChildren))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Leaf", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("HasChildren", ctx, "C").Return(false, nil)
		repo.On("Delete", ctx, "C").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "C"))
	})
}
