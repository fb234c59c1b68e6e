package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
)

var hundred = decimal.NewFromInt(100)

// AnalysisUseCase computes period-over-period comparisons from the
// local cost store. All methods are read-only and take includeCredits
// explicitly so concurrent readers never disagree on the setting.
type AnalysisUseCase struct {
	costRepo repository.CostRepository

	nowFn func() time.Time
}

// NewAnalysisUseCase creates a new analysis use case.
func NewAnalysisUseCase(costRepo repository.CostRepository) *AnalysisUseCase {
	return &AnalysisUseCase{
		costRepo: costRepo,
		nowFn:    time.Now,
	}
}

func (uc *AnalysisUseCase) today() time.Time {
	return dateutil.DateOnly(uc.nowFn().UTC())
}

// percentChange aplica a convenção de razão usada em todo o dashboard:
// com período anterior zero, qualquer gasto atual conta como +100%.
func percentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

func comparison(label string, current, previous decimal.Decimal) *entity.CostComparison {
	return &entity.CostComparison{
		Label:          label,
		CurrentPeriod:  current,
		PreviousPeriod: previous,
		Difference:     current.Sub(previous),
		PercentChange:  percentChange(current, previous),
	}
}

// MonthToDateComparison compara o gasto do mês corrente até hoje com o
// mesmo trecho do mês anterior. Em meses anteriores mais curtos o dia é
// limitado ao último dia do mês.
func (uc *AnalysisUseCase) MonthToDateComparison(ctx context.Context, includeCredits bool) (*entity.CostComparison, error) {
	today := uc.today()

	current, err := uc.costRepo.TotalForRange(ctx, dateutil.FirstOfMonth(today), today, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing month-to-date total: %w", err)
	}

	sameDayLastMonth := dateutil.SameDayLastMonth(today)
	previous, err := uc.costRepo.TotalForRange(ctx, dateutil.FirstOfMonth(sameDayLastMonth), sameDayLastMonth, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing last month-to-date total: %w", err)
	}

	return comparison("Month-to-Date", current, previous), nil
}

// FullMonthComparison compara o último mês calendário completo com o
// mês anterior a ele.
func (uc *AnalysisUseCase) FullMonthComparison(ctx context.Context, includeCredits bool) (*entity.CostComparison, error) {
	firstOfThisMonth := dateutil.FirstOfMonth(uc.today())
	lastMonthFirst := firstOfThisMonth.AddDate(0, -1, 0)
	lastMonthEnd := firstOfThisMonth.AddDate(0, 0, -1)
	previousFirst := firstOfThisMonth.AddDate(0, -2, 0)
	previousEnd := lastMonthFirst.AddDate(0, 0, -1)

	current, err := uc.costRepo.TotalForRange(ctx, lastMonthFirst, lastMonthEnd, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing last month total: %w", err)
	}
	previous, err := uc.costRepo.TotalForRange(ctx, previousFirst, previousEnd, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing previous month total: %w", err)
	}

	return comparison("Last Full Month", current, previous), nil
}

// Rolling30Comparison compara os últimos 30 dias terminando ontem com
// os 30 dias imediatamente anteriores. Janelas de largura fixa, sem
// alinhamento com o calendário.
func (uc *AnalysisUseCase) Rolling30Comparison(ctx context.Context, includeCredits bool) (*entity.CostComparison, error) {
	yesterday := uc.today().AddDate(0, 0, -1)
	last30Start := yesterday.AddDate(0, 0, -29)
	prev30Start := last30Start.AddDate(0, 0, -30)
	prev30End := last30Start.AddDate(0, 0, -1)

	current, err := uc.costRepo.TotalForRange(ctx, last30Start, yesterday, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing rolling 30-day total: %w", err)
	}
	previous, err := uc.costRepo.TotalForRange(ctx, prev30Start, prev30End, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing previous 30-day total: %w", err)
	}

	return comparison("Rolling 30 Days", current, previous), nil
}

// DayByDayComparison emparelha o dia n deste mês com o dia n do mês
// passado, do dia 1 até o maior dia com dados em qualquer dos dois
// meses. Dias sem registros contam como zero.
func (uc *AnalysisUseCase) DayByDayComparison(ctx context.Context, includeCredits bool) ([]entity.DayComparison, error) {
	today := uc.today()
	firstOfThisMonth := dateutil.FirstOfMonth(today)
	lastMonthFirst := firstOfThisMonth.AddDate(0, -1, 0)
	lastMonthEnd := firstOfThisMonth.AddDate(0, 0, -1)

	thisMonth, err := uc.costRepo.DailyTotals(ctx, firstOfThisMonth, today, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing current month daily totals: %w", err)
	}
	lastMonth, err := uc.costRepo.DailyTotals(ctx, lastMonthFirst, lastMonthEnd, includeCredits)
	if err != nil {
		return nil, fmt.Errorf("computing previous month daily totals: %w", err)
	}

	maxDay := 0
	thisByDay := map[int]decimal.Decimal{}
	for _, total := range thisMonth {
		day := total.Date.Day()
		thisByDay[day] = total.Total
		if day > maxDay {
			maxDay = day
		}
	}
	lastByDay := map[int]decimal.Decimal{}
	for _, total := range lastMonth {
		day := total.Date.Day()
		lastByDay[day] = total.Total
		if day > maxDay {
			maxDay = day
		}
	}

	comparisons := make([]entity.DayComparison, 0, maxDay)
	for day := 1; day <= maxDay; day++ {
		current := thisByDay[day]
		previous := lastByDay[day]
		comparisons = append(comparisons, entity.DayComparison{
			DayOfMonth:    day,
			ThisMonth:     current,
			LastMonth:     previous,
			Difference:    current.Sub(previous),
			PercentChange: percentChange(current, previous),
		})
	}
	return comparisons, nil
}

// ServiceAccountComparison produz uma linha por serviço ou conta com as
// quatro janelas: MTD contra o mesmo dia do mês passado e a janela
// móvel de 30 dias contra os 30 dias anteriores. Nomes presentes em
// apenas uma janela ainda ganham uma linha, com zero nas demais.
// Empates contam como alta.
func (uc *AnalysisUseCase) ServiceAccountComparison(ctx context.Context, includeCredits bool, groupBy entity.GroupBy) ([]entity.ServiceAccountSummary, error) {
	today := uc.today()
	sameDayLastMonth := dateutil.SameDayLastMonth(today)
	yesterday := today.AddDate(0, 0, -1)
	last30Start := yesterday.AddDate(0, 0, -29)
	prev30Start := last30Start.AddDate(0, 0, -30)
	prev30End := last30Start.AddDate(0, 0, -1)

	mtd, err := uc.costRepo.GroupedTotals(ctx, dateutil.FirstOfMonth(today), today, includeCredits, groupBy)
	if err != nil {
		return nil, fmt.Errorf("computing month-to-date totals by %s: %w", groupBy, err)
	}
	lastMtd, err := uc.costRepo.GroupedTotals(ctx, dateutil.FirstOfMonth(sameDayLastMonth), sameDayLastMonth, includeCredits, groupBy)
	if err != nil {
		return nil, fmt.Errorf("computing last month-to-date totals by %s: %w", groupBy, err)
	}
	last30, err := uc.costRepo.GroupedTotals(ctx, last30Start, yesterday, includeCredits, groupBy)
	if err != nil {
		return nil, fmt.Errorf("computing rolling 30-day totals by %s: %w", groupBy, err)
	}
	prev30, err := uc.costRepo.GroupedTotals(ctx, prev30Start, prev30End, includeCredits, groupBy)
	if err != nil {
		return nil, fmt.Errorf("computing previous 30-day totals by %s: %w", groupBy, err)
	}

	names := map[string]bool{}
	for name := range mtd {
		names[name] = true
	}
	for name := range lastMtd {
		names[name] = true
	}
	for name := range last30 {
		names[name] = true
	}
	for name := range prev30 {
		names[name] = true
	}

	summaries := make([]entity.ServiceAccountSummary, 0, len(names))
	for name := range names {
		mtdCost := mtd[name]
		lastMtdCost := lastMtd[name]
		last30Cost := last30[name]
		prev30Cost := prev30[name]

		summaries = append(summaries, entity.ServiceAccountSummary{
			Name:                   name,
			MtdCost:                mtdCost,
			LastMonthSameDayCost:   lastMtdCost,
			MtdChangePercent:       percentChange(mtdCost, lastMtdCost),
			MtdIsUp:                mtdCost.GreaterThanOrEqual(lastMtdCost),
			LastFullMonthCost:      last30Cost,
			PreviousFullMonthCost:  prev30Cost,
			FullMonthChangePercent: percentChange(last30Cost, prev30Cost),
			FullMonthIsUp:          last30Cost.GreaterThanOrEqual(prev30Cost),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].MtdCost.Equal(summaries[j].MtdCost) {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].MtdCost.GreaterThan(summaries[j].MtdCost)
	})
	return summaries, nil
}

// AccountSummariesThisMonth retorna o resumo por conta do mês corrente.
func (uc *AnalysisUseCase) AccountSummariesThisMonth(ctx context.Context, includeCredits bool) ([]entity.AccountSummary, error) {
	today := uc.today()
	return uc.costRepo.AccountSummaries(ctx, dateutil.FirstOfMonth(today), today, includeCredits)
}

// AccountSummariesLastMonth retorna o resumo por conta do último mês
// calendário completo.
func (uc *AnalysisUseCase) AccountSummariesLastMonth(ctx context.Context, includeCredits bool) ([]entity.AccountSummary, error) {
	firstOfThisMonth := dateutil.FirstOfMonth(uc.today())
	return uc.costRepo.AccountSummaries(ctx, firstOfThisMonth.AddDate(0, -1, 0), firstOfThisMonth.AddDate(0, 0, -1), includeCredits)
}

// CreditsSummary soma os créditos (registros negativos) do mês corrente
// e do mês anterior completo.
func (uc *AnalysisUseCase) CreditsSummary(ctx context.Context) (*entity.CreditsSummary, error) {
	today := uc.today()
	firstOfThisMonth := dateutil.FirstOfMonth(today)

	mtd, err := uc.costRepo.CreditsForRange(ctx, firstOfThisMonth, today)
	if err != nil {
		return nil, fmt.Errorf("computing month-to-date credits: %w", err)
	}
	lastMonth, err := uc.costRepo.CreditsForRange(ctx, firstOfThisMonth.AddDate(0, -1, 0), firstOfThisMonth.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("computing last month credits: %w", err)
	}

	return &entity.CreditsSummary{MtdCredits: mtd, LastMonthCredits: lastMonth}, nil
}
