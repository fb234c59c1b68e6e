package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgetsTypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
)

const dateLayout = "2006-01-02"

// Interfaces mínimas dos clientes AWS, para permitir mocks nos testes.
type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	GetDimensionValues(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error)
}

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type budgetsAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
}

// BillingRepositoryImpl implementa o BillingRepository sobre o Cost
// Explorer, com resolução de nomes de conta em cache.
type BillingRepositoryImpl struct {
	ce      costExplorerAPI
	sts     stsAPI
	budgets budgetsAPI

	mu           sync.Mutex
	accountNames map[string]string
	nowFn        func() time.Time
}

// NewBillingRepository carrega a config AWS do profile informado e cria
// os clientes. O Cost Explorer e o Budgets são sempre us-east-1.
func NewBillingRepository(ctx context.Context, profile, region string) (repository.BillingRepository, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	globalCfg := cfg.Copy()
	globalCfg.Region = "us-east-1"

	return &BillingRepositoryImpl{
		ce:           costexplorer.NewFromConfig(globalCfg),
		sts:          sts.NewFromConfig(cfg),
		budgets:      budgets.NewFromConfig(globalCfg),
		accountNames: make(map[string]string),
		nowFn:        time.Now,
	}, nil
}

// FetchDailyCosts busca os custos diários do intervalo inclusivo
// [from, to], agrupados por conta e serviço, drenando todas as páginas.
// O cancelamento do contexto é observado entre páginas.
func (r *BillingRepositoryImpl) FetchDailyCosts(ctx context.Context, from, to time.Time) ([]entity.CostRecord, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(from.Format(dateLayout)),
			// O fim do intervalo da API é exclusivo.
			End: aws.String(to.AddDate(0, 0, 1).Format(dateLayout)),
		},
		Granularity: ceTypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("LINKED_ACCOUNT")},
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	}

	var records []entity.CostRecord

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := r.ce.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}

		for _, period := range result.ResultsByTime {
			date, err := time.ParseInLocation(dateLayout, aws.ToString(period.TimePeriod.Start), time.UTC)
			if err != nil {
				return nil, fmt.Errorf("parse period start %q: %w", aws.ToString(period.TimePeriod.Start), err)
			}

			for _, group := range period.Groups {
				if len(group.Keys) < 2 {
					continue
				}
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok || metric.Amount == nil {
					continue
				}

				cost, err := decimal.NewFromString(aws.ToString(metric.Amount))
				if err != nil {
					return nil, fmt.Errorf("parse cost amount %q: %w", aws.ToString(metric.Amount), err)
				}

				accountID := group.Keys[0]
				records = append(records, entity.CostRecord{
					Date:        date,
					AccountID:   accountID,
					AccountName: r.accountName(ctx, accountID),
					Service:     group.Keys[1],
					Cost:        cost,
					Currency:    aws.ToString(metric.Unit),
				})
			}
		}

		if aws.ToString(result.NextPageToken) == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return records, nil
}

// accountName resolve o nome de exibição de uma conta, com cache. Quando
// a resolução falha, degrada para o próprio ID em vez de falhar o sync.
func (r *BillingRepositoryImpl) accountName(ctx context.Context, accountID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.accountNames[accountID]; ok {
		return name
	}

	today := dateutil.DateOnly(r.nowFn())
	result, err := r.ce.GetDimensionValues(ctx, &costexplorer.GetDimensionValuesInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(today.AddDate(0, 0, -30).Format(dateLayout)),
			End:   aws.String(today.Format(dateLayout)),
		},
		Dimension: ceTypes.DimensionLinkedAccount,
		Context:   ceTypes.ContextCostAndUsage,
	})
	if err != nil {
		return accountID
	}

	for _, value := range result.DimensionValues {
		id := aws.ToString(value.Value)
		if id == "" {
			continue
		}
		if desc, ok := value.Attributes["description"]; ok && desc != "" {
			r.accountNames[id] = desc
		} else {
			r.accountNames[id] = id
		}
	}

	if name, ok := r.accountNames[accountID]; ok {
		return name
	}
	return accountID
}

// GetAccountID retorna o ID da conta das credenciais atuais.
func (r *BillingRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	result, err := r.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting caller identity: %w", err)
	}
	return aws.ToString(result.Account), nil
}

// GetBudgets retorna os orçamentos da conta. Erros de permissão são
// comuns aqui, então a ausência de orçamentos não é tratada como fatal
// pelos chamadores.
func (r *BillingRepositoryImpl) GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error) {
	accountID, err := r.GetAccountID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.budgets.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("error describing budgets: %w", err)
	}

	budgetsData := make([]entity.BudgetInfo, 0, len(result.Budgets))
	for _, budget := range result.Budgets {
		budgetsData = append(budgetsData, budgetInfoFromAPI(budget))
	}
	return budgetsData, nil
}

func budgetInfoFromAPI(budget budgetsTypes.Budget) entity.BudgetInfo {
	info := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
	if budget.BudgetLimit != nil {
		info.Limit = parseAmount(budget.BudgetLimit.Amount)
	}
	if budget.CalculatedSpend != nil {
		if budget.CalculatedSpend.ActualSpend != nil {
			info.Actual = parseAmount(budget.CalculatedSpend.ActualSpend.Amount)
		}
		if budget.CalculatedSpend.ForecastedSpend != nil {
			info.Forecast = parseAmount(budget.CalculatedSpend.ForecastedSpend.Amount)
		}
	}
	return info
}

func parseAmount(amount *string) float64 {
	d, err := decimal.NewFromString(aws.ToString(amount))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
