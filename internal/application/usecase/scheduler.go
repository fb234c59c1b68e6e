package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

// Scheduler dispara syncs incrementais em intervalo fixo. As execuções
// são sequenciais: um tick que chega com um sync em andamento é
// descartado pelo próprio ticker.
type Scheduler struct {
	syncUseCase *SyncUseCase
	interval    time.Duration
	onSynced    func()
}

// NewScheduler creates a scheduler that triggers an incremental sync
// every interval. onSynced, when non-nil, runs after each successful
// sync (the dashboard uses it to re-render).
func NewScheduler(syncUseCase *SyncUseCase, interval time.Duration, onSynced func()) *Scheduler {
	return &Scheduler{
		syncUseCase: syncUseCase,
		interval:    interval,
		onSynced:    onSynced,
	}
}

// Run bloqueia até o contexto ser cancelado.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			result, err := s.syncUseCase.Sync(ctx, false)
			if err != nil {
				if errors.Is(err, types.ErrSyncInFlight) || errors.Is(err, context.Canceled) {
					continue
				}
				slog.Error("scheduled sync failed", "error", err)
				continue
			}
			slog.Info("scheduled sync finished",
				"records", result.RecordsMerged,
				"through", result.SyncedThrough.Format("2006-01-02"))
			if s.onSynced != nil {
				s.onSynced()
			}
		}
	}
}
