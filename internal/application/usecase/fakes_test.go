package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

type recordKey struct {
	date    string
	account string
	service string
}

// memoryCostRepository is an in-memory CostRepository with the same
// merge and filtering semantics as the sqlite adapter.
type memoryCostRepository struct {
	records map[recordKey]entity.CostRecord
}

func newMemoryCostRepository() *memoryCostRepository {
	return &memoryCostRepository{records: map[recordKey]entity.CostRecord{}}
}

func (r *memoryCostRepository) Upsert(_ context.Context, records []entity.CostRecord) error {
	for _, record := range records {
		key := recordKey{
			date:    record.Date.Format("2006-01-02"),
			account: record.AccountID,
			service: record.Service,
		}
		r.records[key] = record
	}
	return nil
}

func (r *memoryCostRepository) inRange(from, to time.Time, includeCredits bool) []entity.CostRecord {
	var out []entity.CostRecord
	for _, record := range r.records {
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		if !includeCredits && record.IsCredit() {
			continue
		}
		out = append(out, record)
	}
	return out
}

func (r *memoryCostRepository) TotalForRange(_ context.Context, from, to time.Time, includeCredits bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, record := range r.inRange(from, to, includeCredits) {
		total = total.Add(record.Cost)
	}
	return total, nil
}

func (r *memoryCostRepository) DailyTotals(_ context.Context, from, to time.Time, includeCredits bool) ([]entity.DailyTotal, error) {
	byDate := map[string]decimal.Decimal{}
	for _, record := range r.inRange(from, to, includeCredits) {
		key := record.Date.Format("2006-01-02")
		byDate[key] = byDate[key].Add(record.Cost)
	}

	var totals []entity.DailyTotal
	for key, total := range byDate {
		date, _ := time.Parse("2006-01-02", key)
		totals = append(totals, entity.DailyTotal{Date: date, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date.Before(totals[j].Date) })
	return totals, nil
}

func (r *memoryCostRepository) GroupedTotals(_ context.Context, from, to time.Time, includeCredits bool, groupBy entity.GroupBy) (map[string]decimal.Decimal, error) {
	totals := map[string]decimal.Decimal{}
	for _, record := range r.inRange(from, to, includeCredits) {
		name := record.Service
		if groupBy == entity.GroupByAccount {
			name = record.AccountName
		}
		totals[name] = totals[name].Add(record.Cost)
	}
	return totals, nil
}

func (r *memoryCostRepository) AccountSummaries(_ context.Context, from, to time.Time, includeCredits bool) ([]entity.AccountSummary, error) {
	byAccount := map[string]*entity.AccountSummary{}
	for _, record := range r.inRange(from, to, includeCredits) {
		summary, ok := byAccount[record.AccountID]
		if !ok {
			summary = &entity.AccountSummary{
				AccountID:     record.AccountID,
				AccountName:   record.AccountName,
				CostByService: map[string]decimal.Decimal{},
			}
			byAccount[record.AccountID] = summary
		}
		summary.TotalCost = summary.TotalCost.Add(record.Cost)
		summary.CostByService[record.Service] = summary.CostByService[record.Service].Add(record.Cost)
	}

	var summaries []entity.AccountSummary
	for _, summary := range byAccount {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalCost.GreaterThan(summaries[j].TotalCost)
	})
	return summaries, nil
}

func (r *memoryCostRepository) CreditsForRange(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, record := range r.inRange(from, to, true) {
		if record.IsCredit() {
			total = total.Add(record.Cost)
		}
	}
	return total, nil
}

func (r *memoryCostRepository) LatestDate(_ context.Context) (time.Time, bool, error) {
	var latest time.Time
	for _, record := range r.records {
		if record.Date.After(latest) {
			latest = record.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, false, nil
	}
	return latest, true, nil
}

func (r *memoryCostRepository) MissingDates(_ context.Context, from, to time.Time) ([]time.Time, error) {
	present := map[string]bool{}
	for _, record := range r.records {
		present[record.Date.Format("2006-01-02")] = true
	}

	var missing []time.Time
	for _, date := range dateutil.DaysBetween(from, to) {
		if !present[date.Format("2006-01-02")] {
			missing = append(missing, date)
		}
	}
	return missing, nil
}

func (r *memoryCostRepository) Close() error { return nil }

// fakeBillingRepository returns canned records and captures the window
// it was asked for.
type fakeBillingRepository struct {
	records []entity.CostRecord
	err     error

	fetchedFrom time.Time
	fetchedTo   time.Time
	fetchCalls  int
}

func (r *fakeBillingRepository) FetchDailyCosts(_ context.Context, from, to time.Time) ([]entity.CostRecord, error) {
	r.fetchCalls++
	r.fetchedFrom = from
	r.fetchedTo = to
	if r.err != nil {
		return nil, r.err
	}
	return r.records, nil
}

func (r *fakeBillingRepository) GetAccountID(_ context.Context) (string, error) {
	return "123456789012", nil
}

func (r *fakeBillingRepository) GetBudgets(_ context.Context) ([]entity.BudgetInfo, error) {
	return nil, nil
}

// quietConsole discards all output.
type quietConsole struct{}

func (quietConsole) Print(_ ...interface{})                {}
func (quietConsole) Printf(_ string, _ ...interface{})     {}
func (quietConsole) Println(_ ...interface{})              {}
func (quietConsole) LogInfo(_ string, _ ...interface{})    {}
func (quietConsole) LogWarning(_ string, _ ...interface{}) {}
func (quietConsole) LogError(_ string, _ ...interface{})   {}
func (quietConsole) LogSuccess(_ string, _ ...interface{}) {}
func (quietConsole) Status(_ string) types.StatusHandle    { return quietStatus{} }
func (quietConsole) CreateTable() types.TableInterface     { return &quietTable{} }

type quietStatus struct{}

func (quietStatus) Update(_ string) {}
func (quietStatus) Stop()           {}

type quietTable struct{}

func (*quietTable) AddColumn(_ string, _ ...interface{}) {}
func (*quietTable) AddRow(_ ...interface{})              {}
func (*quietTable) Render() string                       { return "" }
