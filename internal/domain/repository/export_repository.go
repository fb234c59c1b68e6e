package repository

import (
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
)

// DashboardReport é o snapshot exportável do dashboard: as comparações de
// período e os resumos agrupados calculados sobre o armazenamento local.
type DashboardReport struct {
	AccountID      string                         `json:"account_id,omitempty"`
	GeneratedAt    string                         `json:"generated_at"`
	IncludeCredits bool                           `json:"include_credits"`
	MonthToDate    entity.CostComparison          `json:"month_to_date"`
	FullMonth      entity.CostComparison          `json:"full_month"`
	Rolling30Days  entity.CostComparison          `json:"rolling_30_days"`
	DayByDay       []entity.DayComparison         `json:"day_by_day"`
	ServiceSummary []entity.ServiceAccountSummary `json:"service_summary"`
	AccountSummary []entity.ServiceAccountSummary `json:"account_summary"`
	Credits        entity.CreditsSummary          `json:"credits"`
	Budgets        []entity.BudgetInfo            `json:"budgets,omitempty"`
}

// ExportRepository define a interface para exportação de relatórios.
type ExportRepository interface {
	ExportToCSV(report DashboardReport, filename, outputDir string) (string, error)
	ExportToJSON(report DashboardReport, filename, outputDir string) (string, error)
	ExportToPDF(report DashboardReport, filename, outputDir string) (string, error)
}
