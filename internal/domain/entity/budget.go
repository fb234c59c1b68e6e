package entity

// BudgetInfo contém as informações de um orçamento AWS exibidas junto ao
// dashboard. Vem direto da API de Budgets, não do armazenamento local.
type BudgetInfo struct {
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast"`
}
