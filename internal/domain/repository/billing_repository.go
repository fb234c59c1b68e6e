package repository

import (
	"context"
	"time"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
)

// BillingRepository define a interface com a fonte externa de dados de
// billing (Cost Explorer).
type BillingRepository interface {
	// FetchDailyCosts busca os registros diários de custo no intervalo
	// inclusivo [from, to], agrupados por conta e serviço. A paginação é
	// drenada por completo antes do retorno; o cancelamento do contexto é
	// observado entre páginas.
	FetchDailyCosts(ctx context.Context, from, to time.Time) ([]entity.CostRecord, error)

	// GetAccountID retorna o ID da conta das credenciais atuais.
	GetAccountID(ctx context.Context) (string, error)

	// GetBudgets retorna os orçamentos configurados na conta. Falhas aqui
	// não são fatais para o dashboard.
	GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error)
}
