package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
)

// 31 de maio: mês anterior (abril) tem só 30 dias, exercitando o clamp.
var analysisToday = dateutil.Date(2024, time.May, 31)

func newTestAnalysisUseCase(costRepo *memoryCostRepository) *AnalysisUseCase {
	uc := NewAnalysisUseCase(costRepo)
	uc.nowFn = func() time.Time { return analysisToday }
	return uc
}

func seedRecords(t *testing.T, costRepo *memoryCostRepository, records ...entity.CostRecord) {
	t.Helper()
	if err := costRepo.Upsert(context.Background(), records); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}

func analysisRecord(date time.Time, account, service, cost string) entity.CostRecord {
	return entity.CostRecord{
		Date:        date,
		AccountID:   account,
		AccountName: account,
		Service:     service,
		Cost:        decimal.RequireFromString(cost),
		Currency:    "USD",
	}
}

func TestPercentChangeRule(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		want     string
	}{
		{"zero previous with spend", "0", "50", "100"},
		{"zero previous zero current", "0", "0", "0"},
		{"halved", "100", "50", "-50"},
		{"doubled", "25", "50", "100"},
		{"credit swing", "10", "-10", "-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentChange(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("percentChange(%s, %s) = %s, want %s", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestMonthToDateClampsShortPreviousMonth(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 15), "111", "Amazon EC2", "40.00"),
		// Dia 30 de abril: deve entrar no período anterior mesmo hoje
		// sendo dia 31.
		analysisRecord(dateutil.Date(2024, time.April, 30), "111", "Amazon EC2", "25.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	cmp, err := uc.MonthToDateComparison(context.Background(), true)
	if err != nil {
		t.Fatalf("MonthToDateComparison: %v", err)
	}
	if !cmp.CurrentPeriod.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("CurrentPeriod = %s, want 40.00", cmp.CurrentPeriod)
	}
	if !cmp.PreviousPeriod.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("PreviousPeriod = %s, want 25.00 (April 30 inside the clamped window)", cmp.PreviousPeriod)
	}
	if !cmp.PercentChange.Equal(decimal.RequireFromString("60")) {
		t.Errorf("PercentChange = %s, want 60", cmp.PercentChange)
	}
}

func TestMonthToDateExcludesCredits(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Amazon EC2", "100.00"),
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Credits", "-20.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	net, err := uc.MonthToDateComparison(context.Background(), true)
	if err != nil {
		t.Fatalf("MonthToDateComparison: %v", err)
	}
	if !net.CurrentPeriod.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("net CurrentPeriod = %s, want 80.00", net.CurrentPeriod)
	}

	gross, err := uc.MonthToDateComparison(context.Background(), false)
	if err != nil {
		t.Fatalf("MonthToDateComparison: %v", err)
	}
	if !gross.CurrentPeriod.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("gross CurrentPeriod = %s, want 100.00", gross.CurrentPeriod)
	}
}

func TestFullMonthComparison(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.April, 10), "111", "Amazon EC2", "30.00"),
		analysisRecord(dateutil.Date(2024, time.March, 31), "111", "Amazon EC2", "20.00"),
		// Mês corrente não participa da comparação de meses completos.
		analysisRecord(dateutil.Date(2024, time.May, 1), "111", "Amazon EC2", "99.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	cmp, err := uc.FullMonthComparison(context.Background(), true)
	if err != nil {
		t.Fatalf("FullMonthComparison: %v", err)
	}
	if !cmp.CurrentPeriod.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("CurrentPeriod = %s, want 30.00", cmp.CurrentPeriod)
	}
	if !cmp.PreviousPeriod.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("PreviousPeriod = %s, want 20.00", cmp.PreviousPeriod)
	}
}

func TestRolling30WindowBoundaries(t *testing.T) {
	costRepo := newMemoryCostRepository()
	yesterday := analysisToday.AddDate(0, 0, -1)
	last30Start := yesterday.AddDate(0, 0, -29)
	seedRecords(t, costRepo,
		analysisRecord(yesterday, "111", "Amazon EC2", "1.00"),
		analysisRecord(last30Start, "111", "Amazon EC2", "2.00"),
		// Um dia antes da janela corrente: pertence à janela anterior.
		analysisRecord(last30Start.AddDate(0, 0, -1), "111", "Amazon EC2", "4.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	cmp, err := uc.Rolling30Comparison(context.Background(), true)
	if err != nil {
		t.Fatalf("Rolling30Comparison: %v", err)
	}
	if !cmp.CurrentPeriod.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("CurrentPeriod = %s, want 3.00", cmp.CurrentPeriod)
	}
	if !cmp.PreviousPeriod.Equal(decimal.RequireFromString("4.00")) {
		t.Errorf("PreviousPeriod = %s, want 4.00", cmp.PreviousPeriod)
	}
}

func TestDayByDayTreatsAbsentDaysAsZero(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 1), "111", "Amazon EC2", "10.00"),
		analysisRecord(dateutil.Date(2024, time.April, 3), "111", "Amazon EC2", "6.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	days, err := uc.DayByDayComparison(context.Background(), true)
	if err != nil {
		t.Fatalf("DayByDayComparison: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d day rows, want 3 (up to the max day with data)", len(days))
	}
	if !days[0].ThisMonth.Equal(decimal.RequireFromString("10.00")) || !days[0].LastMonth.IsZero() {
		t.Errorf("day 1 = %s vs %s, want 10.00 vs 0", days[0].ThisMonth, days[0].LastMonth)
	}
	if !days[1].ThisMonth.IsZero() || !days[1].LastMonth.IsZero() {
		t.Errorf("day 2 = %s vs %s, want 0 vs 0", days[1].ThisMonth, days[1].LastMonth)
	}
	if !days[2].LastMonth.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("day 3 last month = %s, want 6.00", days[2].LastMonth)
	}
}

func TestServiceAccountComparisonUnionsNames(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		// Só no MTD corrente.
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "AWS Lambda", "5.00"),
		// Só na janela dos 30 dias anteriores.
		analysisRecord(dateutil.Date(2024, time.April, 15), "111", "Amazon S3", "3.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	summaries, err := uc.ServiceAccountComparison(context.Background(), true, entity.GroupByService)
	if err != nil {
		t.Fatalf("ServiceAccountComparison: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d rows, want 2 (names unioned across windows)", len(summaries))
	}

	byName := map[string]entity.ServiceAccountSummary{}
	for _, summary := range summaries {
		byName[summary.Name] = summary
	}

	lambda := byName["AWS Lambda"]
	if !lambda.MtdCost.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("Lambda MtdCost = %s, want 5.00", lambda.MtdCost)
	}
	if !lambda.MtdIsUp {
		t.Error("Lambda MtdIsUp = false, want true")
	}

	s3 := byName["Amazon S3"]
	if !s3.MtdCost.IsZero() {
		t.Errorf("S3 MtdCost = %s, want 0 (absent window counts as zero)", s3.MtdCost)
	}
	if s3.FullMonthIsUp {
		t.Error("S3 FullMonthIsUp = true, want false (dropped to zero)")
	}
}

func TestServiceAccountComparisonTiesCountAsUp(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Amazon EC2", "7.00"),
		analysisRecord(dateutil.Date(2024, time.April, 10), "111", "Amazon EC2", "7.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	summaries, err := uc.ServiceAccountComparison(context.Background(), true, entity.GroupByService)
	if err != nil {
		t.Fatalf("ServiceAccountComparison: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d rows, want 1", len(summaries))
	}
	if !summaries[0].MtdIsUp {
		t.Error("MtdIsUp = false for equal periods, want true")
	}
}

func TestServiceAccountComparisonOrdersByMtdDescending(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Amazon S3", "1.00"),
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Amazon EC2", "9.00"),
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "AWS Lambda", "4.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	summaries, err := uc.ServiceAccountComparison(context.Background(), true, entity.GroupByService)
	if err != nil {
		t.Fatalf("ServiceAccountComparison: %v", err)
	}

	var names []string
	for _, summary := range summaries {
		names = append(names, summary.Name)
	}
	want := []string{"Amazon EC2", "AWS Lambda", "Amazon S3"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestCreditsSummary(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 5), "111", "Credits", "-4.00"),
		analysisRecord(dateutil.Date(2024, time.May, 5), "111", "Amazon EC2", "50.00"),
		analysisRecord(dateutil.Date(2024, time.April, 20), "111", "Credits", "-9.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	summary, err := uc.CreditsSummary(context.Background())
	if err != nil {
		t.Fatalf("CreditsSummary: %v", err)
	}
	if !summary.MtdCredits.Equal(decimal.RequireFromString("-4.00")) {
		t.Errorf("MtdCredits = %s, want -4.00", summary.MtdCredits)
	}
	if !summary.LastMonthCredits.Equal(decimal.RequireFromString("-9.00")) {
		t.Errorf("LastMonthCredits = %s, want -9.00", summary.LastMonthCredits)
	}
}

func TestAccountSummariesThisMonth(t *testing.T) {
	costRepo := newMemoryCostRepository()
	seedRecords(t, costRepo,
		analysisRecord(dateutil.Date(2024, time.May, 10), "111", "Amazon EC2", "10.00"),
		analysisRecord(dateutil.Date(2024, time.May, 11), "222", "Amazon S3", "30.00"),
		analysisRecord(dateutil.Date(2024, time.April, 10), "333", "Amazon EC2", "99.00"),
	)
	uc := newTestAnalysisUseCase(costRepo)

	summaries, err := uc.AccountSummariesThisMonth(context.Background(), true)
	if err != nil {
		t.Fatalf("AccountSummariesThisMonth: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d accounts, want 2", len(summaries))
	}
	if summaries[0].AccountID != "222" {
		t.Errorf("first account = %s, want 222 (highest spend first)", summaries[0].AccountID)
	}
}
