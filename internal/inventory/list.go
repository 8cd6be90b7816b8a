package inventory

import "github.com/vbonduro/closet/internal/domain"

type Filter struct {
	// Category restricts the view; empty means every category.
	Category domain.Category
	ShowAll  bool
	// Limit is the visible count when ShowAll is false. Zero means DefaultVisible.
	Limit int
}

type Projection struct {
	Items []domain.ClothingItem `json:"items"`
	// Total counts every item matching the filter, including hidden ones.
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

func (s *Store) List(f Filter) Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.ClothingItem, 0, len(s.items))
	for _, it := range s.items {
		if f.Category == "" || it.Category == f.Category {
			matched = append(matched, it)
		}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultVisible
	}
	p := Projection{Items: matched, Total: len(matched)}
	if !f.ShowAll && len(matched) > limit {
		p.Items = matched[:limit]
		p.HasMore = true
	}
	return p
}
