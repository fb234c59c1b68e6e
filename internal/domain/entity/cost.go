package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostRecord é o fato atômico do armazenamento: uma observação de custo
// para um (dia, conta, serviço). A chave natural é (Date, AccountID, Service);
// um novo registro com a mesma chave substitui o anterior.
type CostRecord struct {
	Date        time.Time       `json:"date"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Service     string          `json:"service"`
	Cost        decimal.Decimal `json:"cost"`
	Currency    string          `json:"currency"`
}

// IsCredit reports whether the record represents a credit or refund.
// Créditos têm custo negativo e são dados de primeira classe, não erro.
func (r CostRecord) IsCredit() bool {
	return r.Cost.IsNegative()
}

// DailyTotal is the stored cost summed for a single calendar day.
type DailyTotal struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// GroupBy selects the dimension for grouped totals.
type GroupBy string

const (
	GroupByService GroupBy = "service"
	GroupByAccount GroupBy = "account"
)

// AccountSummary agrega o custo de uma conta em um período, com o
// detalhamento por serviço.
type AccountSummary struct {
	AccountID     string                     `json:"account_id"`
	AccountName   string                     `json:"account_name"`
	TotalCost     decimal.Decimal            `json:"total_cost"`
	CostByService map[string]decimal.Decimal `json:"cost_by_service"`
}

// SyncResult descreve o resultado de uma sincronização bem-sucedida.
type SyncResult struct {
	RecordsMerged int       `json:"records_merged"`
	SyncedFrom    time.Time `json:"synced_from"`
	SyncedThrough time.Time `json:"synced_through"`
	FullSync      bool      `json:"full_sync"`
}
