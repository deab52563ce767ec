package category

import (
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// Category pairs a category name with its display color.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// colors keeps the palette the web client renders charts with.
var colors = map[string]string{
	expense.CategoryFood:          "#10B981",
	expense.CategoryTransport:     "#3B82F6",
	expense.CategoryShopping:      "#8B5CF6",
	expense.CategoryUtilities:     "#F59E0B",
	expense.CategoryHealthcare:    "#EF4444",
	expense.CategoryEntertainment: "#EC4899",
	expense.CategoryOther:         "#6B7280",
}

// All lists every category in display order.
func All() []Category {
	categories := make([]Category, 0, len(expense.Categories))
	for _, name := range expense.Categories {
		categories = append(categories, Category{Name: name, Color: colors[name]})
	}
	return categories
}
