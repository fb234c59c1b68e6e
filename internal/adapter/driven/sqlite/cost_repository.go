// Package sqlite implementa o CostRepository sobre um arquivo SQLite.
// O custo é armazenado como TEXT e somado com decimal no lado Go, para
// que os totais permaneçam exatos.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

const dateLayout = "2006-01-02"

// CostRepositoryImpl implementa o repository.CostRepository.
type CostRepositoryImpl struct {
	db *sql.DB
}

// NewCostRepository abre (ou cria) o banco no caminho informado, aplica
// as migrações e retorna o repositório pronto para uso.
func NewCostRepository(dbPath string) (repository.CostRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// WAL permite leituras concorrentes com o escritor único do sync.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &CostRepositoryImpl{db: db}, nil
}

// Close fecha a conexão com o banco.
func (r *CostRepositoryImpl) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Upsert grava os registros pela chave natural dentro de uma única
// transação. Reprocessar o mesmo lote é idempotente: a segunda escrita
// substitui a primeira com o mesmo valor.
func (r *CostRepositoryImpl) Upsert(ctx context.Context, records []entity.CostRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_costs (date, account_id, account_name, service, cost, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, account_id, service) DO UPDATE SET
			account_name = excluded.account_name,
			cost         = excluded.cost,
			currency     = excluded.currency`)
	if err != nil {
		return fmt.Errorf("prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.Date.Format(dateLayout),
			rec.AccountID,
			rec.AccountName,
			rec.Service,
			rec.Cost.String(),
			rec.Currency,
		); err != nil {
			return fmt.Errorf("upsert record (%s, %s, %s): %w",
				rec.Date.Format(dateLayout), rec.AccountID, rec.Service, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Cost records merged", "count", len(records))
	return nil
}

// rangeRecords lê os registros do intervalo inclusivo [from, to].
// Créditos são filtrados no lado Go para manter a comparação exata.
func (r *CostRepositoryImpl) rangeRecords(ctx context.Context, from, to time.Time, includeCredits bool) ([]entity.CostRecord, error) {
	if from.After(to) {
		return nil, types.ErrInvalidDateRange
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, account_id, account_name, service, cost, currency
		FROM daily_costs
		WHERE date >= ? AND date <= ?
		ORDER BY date`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query cost records: %w", err)
	}
	defer rows.Close()

	var records []entity.CostRecord
	for rows.Next() {
		var rec entity.CostRecord
		var dateStr, costStr string
		if err := rows.Scan(&dateStr, &rec.AccountID, &rec.AccountName, &rec.Service, &costStr, &rec.Currency); err != nil {
			return nil, fmt.Errorf("scan cost record: %w", err)
		}
		rec.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		rec.Cost, err = decimal.NewFromString(costStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored cost %q: %w", costStr, err)
		}
		if !includeCredits && rec.IsCredit() {
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TotalForRange soma o custo do intervalo. Com includeCredits=false os
// registros negativos são excluídos por inteiro, não truncados em zero.
func (r *CostRepositoryImpl) TotalForRange(ctx context.Context, from, to time.Time, includeCredits bool) (decimal.Decimal, error) {
	records, err := r.rangeRecords(ctx, from, to, includeCredits)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Cost)
	}
	return total, nil
}

// DailyTotals retorna uma entrada por data com pelo menos um registro no
// intervalo. Datas sem registros ficam ausentes.
func (r *CostRepositoryImpl) DailyTotals(ctx context.Context, from, to time.Time, includeCredits bool) ([]entity.DailyTotal, error) {
	records, err := r.rangeRecords(ctx, from, to, includeCredits)
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]decimal.Decimal)
	for _, rec := range records {
		byDate[rec.Date] = byDate[rec.Date].Add(rec.Cost)
	}

	totals := make([]entity.DailyTotal, 0, len(byDate))
	for date, total := range byDate {
		totals = append(totals, entity.DailyTotal{Date: date, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date.Before(totals[j].Date) })
	return totals, nil
}

// GroupedTotals soma o custo por nome de serviço ou de conta.
func (r *CostRepositoryImpl) GroupedTotals(ctx context.Context, from, to time.Time, includeCredits bool, groupBy entity.GroupBy) (map[string]decimal.Decimal, error) {
	records, err := r.rangeRecords(ctx, from, to, includeCredits)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		name := rec.Service
		if groupBy == entity.GroupByAccount {
			name = rec.AccountName
		}
		totals[name] = totals[name].Add(rec.Cost)
	}
	return totals, nil
}

// AccountSummaries retorna um resumo por conta distinta com dados no
// intervalo, incluindo o detalhamento por serviço.
func (r *CostRepositoryImpl) AccountSummaries(ctx context.Context, from, to time.Time, includeCredits bool) ([]entity.AccountSummary, error) {
	records, err := r.rangeRecords(ctx, from, to, includeCredits)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[string]*entity.AccountSummary)
	for _, rec := range records {
		summary, ok := byAccount[rec.AccountID]
		if !ok {
			summary = &entity.AccountSummary{
				AccountID:     rec.AccountID,
				AccountName:   rec.AccountName,
				CostByService: make(map[string]decimal.Decimal),
			}
			byAccount[rec.AccountID] = summary
		}
		summary.TotalCost = summary.TotalCost.Add(rec.Cost)
		summary.CostByService[rec.Service] = summary.CostByService[rec.Service].Add(rec.Cost)
	}

	summaries := make([]entity.AccountSummary, 0, len(byAccount))
	for _, summary := range byAccount {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[j].TotalCost.LessThan(summaries[i].TotalCost)
	})
	return summaries, nil
}

// CreditsForRange soma apenas os registros negativos do intervalo.
func (r *CostRepositoryImpl) CreditsForRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	records, err := r.rangeRecords(ctx, from, to, true)
	if err != nil {
		return decimal.Zero, err
	}

	credits := decimal.Zero
	for _, rec := range records {
		if rec.IsCredit() {
			credits = credits.Add(rec.Cost)
		}
	}
	return credits, nil
}

// LatestDate retorna a maior data presente. O bool é false com o banco vazio.
func (r *CostRepositoryImpl) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var dateStr sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(date) FROM daily_costs`).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query latest date: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}

	latest, err := time.ParseInLocation(dateLayout, dateStr.String, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse latest date %q: %w", dateStr.String, err)
	}
	return latest, true, nil
}

// MissingDates retorna cada data do intervalo sem nenhum registro. Um dia
// sem atividade de billing é indistinguível de um dia nunca sincronizado.
func (r *CostRepositoryImpl) MissingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if from.After(to) {
		return nil, types.ErrInvalidDateRange
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM daily_costs
		WHERE date >= ? AND date <= ?`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query present dates: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("scan present date: %w", err)
		}
		present[dateStr] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []time.Time
	for _, day := range dateutil.DaysBetween(from, to) {
		if !present[day.Format(dateLayout)] {
			missing = append(missing, day)
		}
	}
	return missing, nil
}
