package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
)

// CostRepository define a interface do armazenamento local de custos
// diários. Todos os intervalos de data são inclusivos nas duas pontas.
type CostRepository interface {
	// Upsert grava cada registro pela chave natural (date, account_id,
	// service), substituindo o valor anterior se já existir. Idempotente:
	// reprocessar o mesmo lote não altera o estado resultante.
	Upsert(ctx context.Context, records []entity.CostRecord) error

	// TotalForRange soma o custo de todos os registros no intervalo.
	// Com includeCredits=false, registros negativos são excluídos da soma
	// por inteiro (não truncados em zero).
	TotalForRange(ctx context.Context, from, to time.Time, includeCredits bool) (decimal.Decimal, error)

	// DailyTotals returns one entry per date that has at least one record
	// in range. Dates without records are absent; callers treat absence
	// as zero.
	DailyTotals(ctx context.Context, from, to time.Time, includeCredits bool) ([]entity.DailyTotal, error)

	// GroupedTotals soma o custo por nome de serviço ou de conta.
	GroupedTotals(ctx context.Context, from, to time.Time, includeCredits bool, groupBy entity.GroupBy) (map[string]decimal.Decimal, error)

	// AccountSummaries returns one summary per distinct account with data
	// in range, including the per-service breakdown.
	AccountSummaries(ctx context.Context, from, to time.Time, includeCredits bool) ([]entity.AccountSummary, error)

	// CreditsForRange soma apenas os registros negativos do intervalo.
	CreditsForRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// LatestDate retorna a maior data presente no armazenamento. O bool é
	// false quando o armazenamento está vazio.
	LatestDate(ctx context.Context) (time.Time, bool, error)

	// MissingDates returns every date in [from, to] for which no record
	// of any account or service exists. A day fetched with zero spend is
	// indistinguishable from a day never fetched.
	MissingDates(ctx context.Context, from, to time.Time) ([]time.Time, error)

	Close() error
}
