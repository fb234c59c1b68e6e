package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

// DashboardUseCase monta e exibe o dashboard de custos a partir do
// armazenamento local, e exporta relatórios quando solicitado.
type DashboardUseCase struct {
	analysis    *AnalysisUseCase
	billingRepo repository.BillingRepository
	exportRepo  repository.ExportRepository
	console     types.ConsoleInterface
}

// NewDashboardUseCase creates a new dashboard use case.
func NewDashboardUseCase(
	analysis *AnalysisUseCase,
	billingRepo repository.BillingRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
) *DashboardUseCase {
	return &DashboardUseCase{
		analysis:    analysis,
		billingRepo: billingRepo,
		exportRepo:  exportRepo,
		console:     console,
	}
}

// BuildReport computa todas as comparações e resumos que alimentam o
// dashboard e os exports.
func (uc *DashboardUseCase) BuildReport(ctx context.Context, includeCredits bool) (*repository.DashboardReport, error) {
	monthToDate, err := uc.analysis.MonthToDateComparison(ctx, includeCredits)
	if err != nil {
		return nil, err
	}
	fullMonth, err := uc.analysis.FullMonthComparison(ctx, includeCredits)
	if err != nil {
		return nil, err
	}
	rolling30, err := uc.analysis.Rolling30Comparison(ctx, includeCredits)
	if err != nil {
		return nil, err
	}
	dayByDay, err := uc.analysis.DayByDayComparison(ctx, includeCredits)
	if err != nil {
		return nil, err
	}
	serviceSummary, err := uc.analysis.ServiceAccountComparison(ctx, includeCredits, entity.GroupByService)
	if err != nil {
		return nil, err
	}
	accountSummary, err := uc.analysis.ServiceAccountComparison(ctx, includeCredits, entity.GroupByAccount)
	if err != nil {
		return nil, err
	}
	credits, err := uc.analysis.CreditsSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := &repository.DashboardReport{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		IncludeCredits: includeCredits,
		MonthToDate:    *monthToDate,
		FullMonth:      *fullMonth,
		Rolling30Days:  *rolling30,
		DayByDay:       dayByDay,
		ServiceSummary: serviceSummary,
		AccountSummary: accountSummary,
		Credits:        *credits,
	}

	// Dados do lado da API são opcionais: o dashboard funciona offline
	// só com o armazenamento local.
	if accountID, err := uc.billingRepo.GetAccountID(ctx); err == nil {
		report.AccountID = accountID
	}
	if budgets, err := uc.billingRepo.GetBudgets(ctx); err == nil {
		report.Budgets = budgets
	} else {
		uc.console.LogWarning("Could not fetch budgets: %s", err)
	}

	return report, nil
}

// RunDashboard exibe o dashboard completo e exporta os relatórios
// configurados.
func (uc *DashboardUseCase) RunDashboard(ctx context.Context, args *types.CLIArgs, includeCredits bool) error {
	status := uc.console.Status("Building dashboard...")

	report, err := uc.BuildReport(ctx, includeCredits)
	if err != nil {
		status.Stop()
		return err
	}

	status.Stop()

	uc.renderPeriodTable(report)
	uc.renderDayByDayTable(report)
	uc.renderGroupedTable("Cost By Service", report.ServiceSummary)
	uc.renderGroupedTable("Cost By Account", report.AccountSummary)
	uc.renderCredits(report)
	uc.renderBudgets(report.Budgets)

	uc.exportReports(report, args)
	return nil
}

// renderPeriodTable mostra as três comparações de período lado a lado.
func (uc *DashboardUseCase) renderPeriodTable(report *repository.DashboardReport) {
	table := uc.console.CreateTable()
	table.AddColumn("Period")
	table.AddColumn("Current")
	table.AddColumn("Previous")
	table.AddColumn("Change")

	for _, cmp := range []entity.CostComparison{report.MonthToDate, report.FullMonth, report.Rolling30Days} {
		table.AddRow(
			pterm.FgMagenta.Sprint(cmp.Label),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%s", cmp.CurrentPeriod.StringFixed(2)),
			pterm.FgYellow.Sprintf("$%s", cmp.PreviousPeriod.StringFixed(2)),
			formatChange(cmp.PercentChange),
		)
	}

	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) renderDayByDayTable(report *repository.DashboardReport) {
	if len(report.DayByDay) == 0 {
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn("Day")
	table.AddColumn("This Month")
	table.AddColumn("Last Month")
	table.AddColumn("Change")

	for _, day := range report.DayByDay {
		table.AddRow(
			fmt.Sprintf("%d", day.DayOfMonth),
			pterm.FgRed.Sprintf("$%s", day.ThisMonth.StringFixed(2)),
			pterm.FgYellow.Sprintf("$%s", day.LastMonth.StringFixed(2)),
			formatChange(day.PercentChange),
		)
	}

	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) renderGroupedTable(title string, summaries []entity.ServiceAccountSummary) {
	if len(summaries) == 0 {
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn(title)
	table.AddColumn("MTD")
	table.AddColumn("Last Month Same Day")
	table.AddColumn("Last 30 Days")
	table.AddColumn("Previous 30 Days")

	for _, summary := range summaries {
		table.AddRow(
			pterm.FgMagenta.Sprint(summary.Name),
			fmt.Sprintf("%s %s",
				pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%s", summary.MtdCost.StringFixed(2)),
				directionArrow(summary.MtdIsUp, summary.MtdChangePercent)),
			pterm.FgYellow.Sprintf("$%s", summary.LastMonthSameDayCost.StringFixed(2)),
			fmt.Sprintf("%s %s",
				pterm.FgRed.Sprintf("$%s", summary.LastFullMonthCost.StringFixed(2)),
				directionArrow(summary.FullMonthIsUp, summary.FullMonthChangePercent)),
			pterm.FgYellow.Sprintf("$%s", summary.PreviousFullMonthCost.StringFixed(2)),
		)
	}

	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) renderCredits(report *repository.DashboardReport) {
	uc.console.Println(pterm.FgGreen.Sprintf("Credits MTD: $%s | Credits Last Month: $%s",
		report.Credits.MtdCredits.StringFixed(2),
		report.Credits.LastMonthCredits.StringFixed(2)))
}

func (uc *DashboardUseCase) renderBudgets(budgets []entity.BudgetInfo) {
	if len(budgets) == 0 {
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn("Budget")
	table.AddColumn("Limit")
	table.AddColumn("Actual")
	table.AddColumn("Forecast")

	for _, budget := range budgets {
		actual := pterm.FgGreen.Sprintf("$%.2f", budget.Actual)
		if budget.Actual > budget.Limit {
			actual = pterm.FgRed.Sprintf("$%.2f", budget.Actual)
		}
		table.AddRow(
			pterm.FgYellow.Sprint(budget.Name),
			fmt.Sprintf("$%.2f", budget.Limit),
			actual,
			fmt.Sprintf("$%.2f", budget.Forecast),
		)
	}

	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) exportReports(report *repository.DashboardReport, args *types.CLIArgs) {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return
	}

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(*report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(*report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(*report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
		}
	}
}

// formatChange colore a variação percentual: vermelho para alta, verde
// para queda, amarelo para estabilidade.
func formatChange(percent decimal.Decimal) string {
	value, _ := percent.Float64()
	switch {
	case percent.IsPositive():
		return pterm.FgRed.Sprintf("⬆ %.2f%%", value)
	case percent.IsNegative():
		return pterm.FgGreen.Sprintf("⬇ %.2f%%", -value)
	default:
		return pterm.FgYellow.Sprint("➡ 0.00%")
	}
}

func directionArrow(isUp bool, percent decimal.Decimal) string {
	value, _ := percent.Float64()
	if isUp {
		return pterm.FgRed.Sprintf("⬆ %.2f%%", value)
	}
	return pterm.FgGreen.Sprintf("⬇ %.2f%%", -value)
}
