package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
)

type mockCostExplorerAPI struct {
	getCostAndUsageFunc    func(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	getDimensionValuesFunc func(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error)
}

func (m *mockCostExplorerAPI) GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return m.getCostAndUsageFunc(ctx, params, optFns...)
}

func (m *mockCostExplorerAPI) GetDimensionValues(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error) {
	if m.getDimensionValuesFunc != nil {
		return m.getDimensionValuesFunc(ctx, params, optFns...)
	}
	return nil, errors.New("dimension values unavailable")
}

func newTestRepository(ce costExplorerAPI) *BillingRepositoryImpl {
	return &BillingRepositoryImpl{
		ce:           ce,
		accountNames: make(map[string]string),
		nowFn:        func() time.Time { return dateutil.Date(2024, time.June, 15) },
	}
}

func costPage(date, nextToken string, groups ...ceTypes.Group) *costexplorer.GetCostAndUsageOutput {
	out := &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{
			{
				TimePeriod: &ceTypes.DateInterval{Start: awssdk.String(date)},
				Groups:     groups,
			},
		},
	}
	if nextToken != "" {
		out.NextPageToken = awssdk.String(nextToken)
	}
	return out
}

func group(accountID, service, amount string) ceTypes.Group {
	return ceTypes.Group{
		Keys: []string{accountID, service},
		Metrics: map[string]ceTypes.MetricValue{
			"UnblendedCost": {Amount: awssdk.String(amount), Unit: awssdk.String("USD")},
		},
	}
}

func TestFetchDailyCostsDrainsPagination(t *testing.T) {
	calls := 0
	mock := &mockCostExplorerAPI{
		getCostAndUsageFunc: func(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
			calls++
			switch calls {
			case 1:
				if params.NextPageToken != nil {
					t.Errorf("first call should not carry a page token")
				}
				return costPage("2024-06-01", "page-2", group("111", "Amazon EC2", "10.00")), nil
			case 2:
				if awssdk.ToString(params.NextPageToken) != "page-2" {
					t.Errorf("expected page token page-2, got %v", params.NextPageToken)
				}
				return costPage("2024-06-02", "", group("111", "Amazon S3", "-2.50")), nil
			default:
				t.Fatalf("unexpected extra call %d", calls)
				return nil, nil
			}
		},
	}

	repo := newTestRepository(mock)
	records, err := repo.FetchDailyCosts(context.Background(), dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.June, 2))
	if err != nil {
		t.Fatalf("FetchDailyCosts: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected pagination to be fully drained in 2 calls, got %d", calls)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[1].Cost.Equal(decimal.RequireFromString("-2.50")) {
		t.Errorf("credit record should keep its negative amount, got %s", records[1].Cost)
	}
	if !records[0].Date.Equal(dateutil.Date(2024, time.June, 1)) {
		t.Errorf("unexpected date on first record: %v", records[0].Date)
	}
}

func TestFetchDailyCostsEndDateIsExclusive(t *testing.T) {
	mock := &mockCostExplorerAPI{
		getCostAndUsageFunc: func(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
			if got := awssdk.ToString(params.TimePeriod.End); got != "2024-06-03" {
				t.Errorf("expected exclusive end 2024-06-03, got %s", got)
			}
			return &costexplorer.GetCostAndUsageOutput{}, nil
		},
	}

	repo := newTestRepository(mock)
	if _, err := repo.FetchDailyCosts(context.Background(), dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.June, 2)); err != nil {
		t.Fatalf("FetchDailyCosts: %v", err)
	}
}

func TestFetchDailyCostsPropagatesError(t *testing.T) {
	fetchErr := errors.New("rate limited")
	mock := &mockCostExplorerAPI{
		getCostAndUsageFunc: func(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
			return nil, fetchErr
		},
	}

	repo := newTestRepository(mock)
	_, err := repo.FetchDailyCosts(context.Background(), dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.June, 2))
	if !errors.Is(err, fetchErr) {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
}

func TestFetchDailyCostsStopsOnCancelledContext(t *testing.T) {
	mock := &mockCostExplorerAPI{
		getCostAndUsageFunc: func(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
			return costPage("2024-06-01", "more", group("111", "Amazon EC2", "1.00")), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newTestRepository(mock)
	_, err := repo.FetchDailyCosts(ctx, dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.June, 2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAccountNameFallsBackToID(t *testing.T) {
	repo := newTestRepository(&mockCostExplorerAPI{})

	if got := repo.accountName(context.Background(), "123456789012"); got != "123456789012" {
		t.Errorf("expected fallback to raw account ID, got %q", got)
	}
}

func TestAccountNameResolvesAndCaches(t *testing.T) {
	lookups := 0
	mock := &mockCostExplorerAPI{
		getDimensionValuesFunc: func(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error) {
			lookups++
			return &costexplorer.GetDimensionValuesOutput{
				DimensionValues: []ceTypes.DimensionValuesWithAttributes{
					{
						Value:      awssdk.String("111"),
						Attributes: map[string]string{"description": "Production"},
					},
				},
			}, nil
		},
	}

	repo := newTestRepository(mock)
	if got := repo.accountName(context.Background(), "111"); got != "Production" {
		t.Errorf("expected resolved name Production, got %q", got)
	}
	if got := repo.accountName(context.Background(), "111"); got != "Production" {
		t.Errorf("expected cached name Production, got %q", got)
	}
	if lookups != 1 {
		t.Errorf("expected a single dimension lookup, got %d", lookups)
	}
}
