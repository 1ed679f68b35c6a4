package core

const (
	// UnknownCategoryName labels transactions whose category no longer resolves.
	UnknownCategoryName = "Unknown"
	// FallbackColor is the neutral gray used for unresolved categories.
	FallbackColor = "#9ca3af"
)

// CategoryIndex is a read-only id lookup over a category snapshot.
type CategoryIndex struct {
	byID map[int64]Category
}

// NewCategoryIndex indexes cats by id. When ids repeat the first one wins.
func NewCategoryIndex(cats []Category) CategoryIndex {
	byID := make(map[int64]Category, len(cats))
	for _, c := range cats {
		if _, seen := byID[c.ID]; seen {
			continue
		}
		byID[c.ID] = c
	}
	return CategoryIndex{byID: byID}
}

func (idx CategoryIndex) Lookup(id int64) (Category, bool) {
	c, ok := idx.byID[id]
	return c, ok
}

// Name returns the category name or UnknownCategoryName.
func (idx CategoryIndex) Name(id int64) string {
	if c, ok := idx.byID[id]; ok && c.Name != "" {
		return c.Name
	}
	return UnknownCategoryName
}

// Color returns the category color or FallbackColor.
func (idx CategoryIndex) Color(id int64) string {
	if c, ok := idx.byID[id]; ok && c.Color != "" {
		return c.Color
	}
	return FallbackColor
}

func (idx CategoryIndex) Len() int {
	return len(idx.byID)
}
