package store

import "context"

// Category is the object representing a meeting category.
// Categories are reference data: they are seeded at migration time and
// fetched, never created, by the planning core.
type Category struct {
	ID              int32
	Name            string
	SuggestedAttire string
}

// FindCategory is the find condition for category.
type FindCategory struct {
	ID   *int32
	Name *string
}

// ListCategories lists categories ordered by id ascending.
func (s *Store) ListCategories(ctx context.Context, find *FindCategory) ([]*Category, error) {
	return s.driver.ListCategories(ctx, find)
}

// GetCategory gets a single category matching the find condition.
func (s *Store) GetCategory(ctx context.Context, find *FindCategory) (*Category, error) {
	list, err := s.driver.ListCategories(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
