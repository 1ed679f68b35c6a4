package ledger

import "gastos/internal/core"

// DefaultCategories returns the categories a new ledger starts with, ids 1..14.
func DefaultCategories() []core.Category {
	defaults := []core.Category{
		{Name: "Alimentación", Type: core.Expense, Icon: "Utensils", Color: "#f87171"},
		{Name: "Transporte", Type: core.Expense, Icon: "Car", Color: "#fb923c"},
		{Name: "Vivienda", Type: core.Expense, Icon: "Home", Color: "#facc15"},
		{Name: "Servicios", Type: core.Expense, Icon: "Zap", Color: "#a3e635"},
		{Name: "Entretenimiento", Type: core.Expense, Icon: "Gamepad2", Color: "#22d3ee"},
		{Name: "Salud", Type: core.Expense, Icon: "Heart", Color: "#f472b6"},
		{Name: "Educación", Type: core.Expense, Icon: "GraduationCap", Color: "#818cf8"},
		{Name: "Compras", Type: core.Expense, Icon: "ShoppingBag", Color: "#2dd4bf"},
		{Name: "Otros", Type: core.Expense, Icon: "MoreHorizontal", Color: "#9ca3af"},
		{Name: "Salario", Type: core.Income, Icon: "Briefcase", Color: "#4ade80"},
		{Name: "Freelance", Type: core.Income, Icon: "Laptop", Color: "#34d399"},
		{Name: "Inversiones", Type: core.Income, Icon: "TrendingUp", Color: "#60a5fa"},
		{Name: "Regalo", Type: core.Income, Icon: "Gift", Color: "#c084fc"},
		{Name: "Otros Ingresos", Type: core.Income, Icon: "Plus", Color: "#94a3b8"},
	}
	for i := range defaults {
		defaults[i].ID = int64(i + 1)
		defaults[i].IsDefault = true
	}
	return defaults
}
