package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

// CategoryNode is a category with its children resolved, for navigation.
type CategoryNode struct {
	models.Category
	Depth    int
	Children []CategoryNode
}

// CategoryService manages the category hierarchy.
type CategoryService struct {
	categories store.CategoryRepository
}

func NewCategoryService(categories store.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CreateCategory adds a category under an optional parent. Names are
// unique across the whole tree, not per parent.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, parentID *int64) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrInvalidInput)
	}

	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrDuplicateName)
	}

	if parentID != nil {
		parent, err := s.categories.FindByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		if parent == nil {
			return nil, fmt.Errorf("parent category %d: %w", *parentID, ErrNotFound)
		}
	}

	created, err := s.categories.Create(ctx, &models.Category{Name: name, ParentID: parentID})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("category %q: %w", name, ErrDuplicateName)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// FindAllCategory returns every category in storage order. Only children
// lists are sorted; the flat list is not.
func (s *CategoryService) FindAllCategory(ctx context.Context) ([]models.Category, error) {
	all, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all categories: %w", err)
	}
	return all, nil
}

// Children returns the direct children of a category sorted by name.
func (s *CategoryService) Children(ctx context.Context, id int64) ([]models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	children, err := s.categories.FindChildren(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find children: %w", err)
	}
	return children, nil
}

// Tree returns the category forest. Roots keep storage order; children at
// every level are sorted by name. Categories whose parent no longer exists
// are treated as roots.
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryNode, error) {
	flat, err := s.FindAllCategory(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// BuildTree assembles a forest from a flat category list.
func BuildTree(flat []models.Category) []CategoryNode {
	known := make(map[int64]bool, len(flat))
	for _, c := range flat {
		known[c.ID] = true
	}

	children := make(map[int64][]models.Category)
	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	for id := range children {
		models.SortByName(children[id])
	}

	onPath := make(map[int64]bool)
	var build func(cats []models.Category, depth int) []CategoryNode
	build = func(cats []models.Category, depth int) []CategoryNode {
		var nodes []CategoryNode
		for _, c := range cats {
			// A parent chain that loops back is cut where it repeats.
			if onPath[c.ID] {
				continue
			}
			onPath[c.ID] = true
			nodes = append(nodes, CategoryNode{
				Category: c,
				Depth:    depth,
				Children: build(children[c.ID], depth+1),
			})
			delete(onPath, c.ID)
		}
		return nodes
	}
	return build(roots, 0)
}

// Flatten walks a forest depth-first, for indented <select> options.
func Flatten(nodes []CategoryNode) []CategoryNode {
	var result []CategoryNode
	var walk func([]CategoryNode)
	walk = func(ns []CategoryNode) {
		for _, n := range ns {
			result = append(result, n)
			walk(n.Children)
		}
	}
	walk(nodes)
	return result
}
