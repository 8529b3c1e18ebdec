package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

func (d *DB) ListCategories(ctx context.Context, find *store.FindCategory) ([]*store.Category, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "category.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "category.name = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, name, suggested_attire
		FROM category
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY category.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Category, 0)
	for rows.Next() {
		var category store.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.SuggestedAttire); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		list = append(list, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return list, nil
}
