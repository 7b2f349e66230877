package category

import "time"

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ParentID     *string   `json:"parentId,omitempty"`
	Level        int       `json:"level"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TreeNode is the nested navigation view of a category.
type TreeNode struct {
	Category
	Children []*TreeNode `json:"children,omitempty"`
}

type CreateInput struct {
	Name         string
	ParentID     *string
	DisplayOrder int
}

type UpdateInput struct {
	Name         *string
	ParentID     *string
	MoveParent   bool // distinguishes "set parent to nil" from "leave parent alone"
	DisplayOrder *int
	IsActive     *bool
}

type ListFilter struct {
	Level      *int
	ParentID   *string
	ActiveOnly bool
}
