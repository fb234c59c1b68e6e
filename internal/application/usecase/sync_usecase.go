package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diillson/aws-cost-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/dateutil"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

// incrementalLookbackDays é a janela mínima de recaptura em syncs
// incrementais. O Cost Explorer pode revisar valores de dias recentes,
// então sempre recarregamos pelo menos os últimos três dias.
const incrementalLookbackDays = 3

// SyncUseCase orchestrates pulling daily costs from the billing API and
// merging them into the local store.
type SyncUseCase struct {
	costRepo    repository.CostRepository
	billingRepo repository.BillingRepository
	console     types.ConsoleInterface

	fullSyncDays int

	mu      sync.Mutex
	syncing bool

	nowFn func() time.Time
}

// NewSyncUseCase creates a new sync use case.
func NewSyncUseCase(
	costRepo repository.CostRepository,
	billingRepo repository.BillingRepository,
	console types.ConsoleInterface,
	fullSyncDays int,
) *SyncUseCase {
	return &SyncUseCase{
		costRepo:     costRepo,
		billingRepo:  billingRepo,
		console:      console,
		fullSyncDays: fullSyncDays,
		nowFn:        time.Now,
	}
}

// Sync fetches daily costs up to yesterday and merges them into the store.
// With fullSync true the whole configured history window is reloaded,
// otherwise only the days after the latest stored date plus a short
// lookback are fetched. Concurrent calls are rejected with ErrSyncInFlight.
func (uc *SyncUseCase) Sync(ctx context.Context, fullSync bool) (*entity.SyncResult, error) {
	uc.mu.Lock()
	if uc.syncing {
		uc.mu.Unlock()
		return nil, types.ErrSyncInFlight
	}
	uc.syncing = true
	uc.mu.Unlock()

	defer func() {
		uc.mu.Lock()
		uc.syncing = false
		uc.mu.Unlock()
	}()

	today := dateutil.DateOnly(uc.nowFn().UTC())
	yesterday := today.AddDate(0, 0, -1)

	start, fullSync, err := uc.syncWindow(ctx, today, fullSync)
	if err != nil {
		return nil, err
	}

	if !fullSync {
		missing, err := uc.costRepo.MissingDates(ctx, start, yesterday)
		if err != nil {
			return nil, fmt.Errorf("checking for missing dates: %w", err)
		}
		if len(missing) == 0 {
			// Loja já cobre a janela; recapturamos só os últimos dias
			// para pegar revisões tardias do Cost Explorer.
			start = today.AddDate(0, 0, -incrementalLookbackDays)
		}
	}

	status := uc.console.Status(fmt.Sprintf("Fetching costs from %s to %s...",
		start.Format("2006-01-02"), yesterday.Format("2006-01-02")))

	records, err := uc.billingRepo.FetchDailyCosts(ctx, start, yesterday)
	if err != nil {
		status.Stop()
		return nil, fmt.Errorf("fetching daily costs: %w", err)
	}

	// Dias sem uso chegam como linhas de custo zero; descartamos antes do
	// merge. Créditos (valores negativos) são mantidos.
	retained := records[:0]
	for _, record := range records {
		if record.Cost.IsZero() {
			continue
		}
		retained = append(retained, record)
	}

	if err := uc.costRepo.Upsert(ctx, retained); err != nil {
		status.Stop()
		return nil, fmt.Errorf("merging cost records: %w", err)
	}

	status.Stop()
	uc.console.LogSuccess("Synced %d cost records through %s",
		len(retained), yesterday.Format("2006-01-02"))

	return &entity.SyncResult{
		RecordsMerged: len(retained),
		SyncedFrom:    start,
		SyncedThrough: yesterday,
		FullSync:      fullSync,
	}, nil
}

// syncWindow decide a data inicial do sync. Uma loja vazia sempre força
// um full sync.
func (uc *SyncUseCase) syncWindow(ctx context.Context, today time.Time, fullSync bool) (time.Time, bool, error) {
	fullStart := today.AddDate(0, 0, -uc.fullSyncDays)

	if fullSync {
		return fullStart, true, nil
	}

	latest, ok, err := uc.costRepo.LatestDate(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading latest stored date: %w", err)
	}
	if !ok {
		return fullStart, true, nil
	}

	start := dateutil.MinDate(latest.AddDate(0, 0, 1), today.AddDate(0, 0, -incrementalLookbackDays))
	return start, false, nil
}
