package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/healthsurge/backend/internal/domain"
)

const auditTimeout = 5 * time.Second

// Auditor writes audit entries in the background so request handlers never
// wait on the database.
type Auditor struct {
	repo   AuditRepository
	logger *slog.Logger

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewAuditor creates a new auditor
func NewAuditor(repo AuditRepository, logger *slog.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger}
}

// RecordPrediction persists a prediction asynchronously
func (a *Auditor) RecordPrediction(c domain.Conditions, result domain.PredictionResult) {
	a.background(func(ctx context.Context) error {
		return a.repo.SavePredictionLog(ctx, c, result)
	}, "prediction")
}

// RecordDispatch persists an emergency fan-out summary asynchronously
func (a *Auditor) RecordDispatch(actions []string, outcome domain.NotificationOutcome) {
	a.background(func(ctx context.Context) error {
		return a.repo.SaveDispatchLog(ctx, actions, outcome)
	}, "dispatch")
}

// Health checks the audit store
func (a *Auditor) Health(ctx context.Context) error {
	return a.repo.Health(ctx)
}

// WaitBackground blocks until all background writes complete.
// Call during graceful shutdown to avoid dropped writes.
func (a *Auditor) WaitBackground() {
	a.wgBg.Wait()
}

func (a *Auditor) background(save func(ctx context.Context) error, kind string) {
	a.wgBg.Add(1)
	go func() {
		defer a.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := save(ctx); err != nil {
			a.logger.Warn("failed to save audit log", "kind", kind, "error", err)
		}
	}()
}
