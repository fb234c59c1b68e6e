package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportToCSV(report repository.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"Section", "Name", "Current", "Previous", "Change %"})

	for _, cmp := range []entity.CostComparison{report.MonthToDate, report.FullMonth, report.Rolling30Days} {
		writer.Write([]string{
			"Period",
			cmp.Label,
			cmp.CurrentPeriod.StringFixed(2),
			cmp.PreviousPeriod.StringFixed(2),
			cmp.PercentChange.StringFixed(2),
		})
	}

	for _, day := range report.DayByDay {
		writer.Write([]string{
			"Day-by-Day",
			fmt.Sprintf("Day %d", day.DayOfMonth),
			day.ThisMonth.StringFixed(2),
			day.LastMonth.StringFixed(2),
			day.PercentChange.StringFixed(2),
		})
	}

	writeSummaries := func(section string, summaries []entity.ServiceAccountSummary) {
		for _, summary := range summaries {
			writer.Write([]string{
				section,
				cleanRichTags(summary.Name),
				summary.MtdCost.StringFixed(2),
				summary.LastMonthSameDayCost.StringFixed(2),
				summary.MtdChangePercent.StringFixed(2),
			})
		}
	}
	writeSummaries("Service", report.ServiceSummary)
	writeSummaries("Account", report.AccountSummary)

	writer.Write([]string{
		"Credits",
		"Month-to-Date / Last Month",
		report.Credits.MtdCredits.StringFixed(2),
		report.Credits.LastMonthCredits.StringFixed(2),
		"",
	})

	for _, budget := range report.Budgets {
		writer.Write([]string{
			"Budget",
			budget.Name,
			fmt.Sprintf("%.2f", budget.Actual),
			fmt.Sprintf("%.2f", budget.Limit),
			"",
		})
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(report repository.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(report repository.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  AWS Cost Dashboard"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	accountLine := "  Local cost store"
	if report.AccountID != "" {
		accountLine = fmt.Sprintf("  Account ID: %s", report.AccountID)
	}
	pdf.CellFormat(0, 8, tr(accountLine), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	periodsStr := ""
	for _, cmp := range []entity.CostComparison{report.MonthToDate, report.FullMonth, report.Rolling30Days} {
		periodsStr += fmt.Sprintf("%s: $%s (previous $%s, %s%%)\n",
			cmp.Label,
			cmp.CurrentPeriod.StringFixed(2),
			cmp.PreviousPeriod.StringFixed(2),
			cmp.PercentChange.StringFixed(2))
	}
	drawSection("Cost Summary", strings.TrimSpace(periodsStr))

	servicesStr := ""
	for _, summary := range report.ServiceSummary {
		servicesStr += fmt.Sprintf("%s: $%s MTD (last month same day $%s)\n",
			cleanRichTags(summary.Name),
			summary.MtdCost.StringFixed(2),
			summary.LastMonthSameDayCost.StringFixed(2))
	}
	drawSection("Cost By Service", strings.TrimSpace(servicesStr))

	accountsStr := ""
	for _, summary := range report.AccountSummary {
		accountsStr += fmt.Sprintf("%s: $%s MTD (last month same day $%s)\n",
			cleanRichTags(summary.Name),
			summary.MtdCost.StringFixed(2),
			summary.LastMonthSameDayCost.StringFixed(2))
	}
	drawSection("Cost By Account", strings.TrimSpace(accountsStr))

	creditsStr := fmt.Sprintf("Month-to-Date: $%s\nLast Month: $%s",
		report.Credits.MtdCredits.StringFixed(2),
		report.Credits.LastMonthCredits.StringFixed(2))
	drawSection("Credits", creditsStr)

	budgetsStr := ""
	for _, budget := range report.Budgets {
		budgetsStr += fmt.Sprintf("%s: $%.2f of $%.2f (forecast $%.2f)\n",
			budget.Name, budget.Actual, budget.Limit, budget.Forecast)
	}
	drawSection("Budget Status", strings.TrimSpace(budgetsStr))

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by AWS Cost Dashboard (Go) | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
