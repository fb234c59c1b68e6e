package entity

import "github.com/shopspring/decimal"

// CostComparison compara o total de um período com o período anterior.
type CostComparison struct {
	Label          string          `json:"label"`
	CurrentPeriod  decimal.Decimal `json:"current_period"`
	PreviousPeriod decimal.Decimal `json:"previous_period"`
	Difference     decimal.Decimal `json:"difference"`
	PercentChange  decimal.Decimal `json:"percent_change"`
}

// DayComparison pairs day n of the current month against day n of the
// previous month. Days absent from the store count as zero.
type DayComparison struct {
	DayOfMonth    int             `json:"day_of_month"`
	ThisMonth     decimal.Decimal `json:"this_month"`
	LastMonth     decimal.Decimal `json:"last_month"`
	Difference    decimal.Decimal `json:"difference"`
	PercentChange decimal.Decimal `json:"percent_change"`
}

// ServiceAccountSummary é uma linha do resumo agrupado por serviço ou
// conta: MTD contra o mesmo dia do mês passado, e a janela móvel de 30
// dias contra os 30 dias anteriores.
type ServiceAccountSummary struct {
	Name                   string          `json:"name"`
	MtdCost                decimal.Decimal `json:"mtd_cost"`
	LastMonthSameDayCost   decimal.Decimal `json:"last_month_same_day_cost"`
	MtdChangePercent       decimal.Decimal `json:"mtd_change_percent"`
	MtdIsUp                bool            `json:"mtd_is_up"`
	LastFullMonthCost      decimal.Decimal `json:"last_full_month_cost"`
	PreviousFullMonthCost  decimal.Decimal `json:"previous_full_month_cost"`
	FullMonthChangePercent decimal.Decimal `json:"full_month_change_percent"`
	FullMonthIsUp          bool            `json:"full_month_is_up"`
}

// CreditsSummary holds the credit totals shown in the dashboard footer.
type CreditsSummary struct {
	MtdCredits       decimal.Decimal `json:"mtd_credits"`
	LastMonthCredits decimal.Decimal `json:"last_month_credits"`
}
