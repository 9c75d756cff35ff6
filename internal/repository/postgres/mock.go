package postgres

import (
	"context"
	"sync"

	"github.com/healthsurge/backend/internal/domain"
)

// MockRepository implements domain.AuditRepository when no database is configured.
// It keeps the most recent entries in memory so tests and demo mode can inspect them.
type MockRepository struct {
	mu          sync.Mutex
	predictions []domain.PredictionResult
	dispatches  []domain.NotificationOutcome
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

const mockRetain = 100

// SavePredictionLog records the result in memory
func (r *MockRepository) SavePredictionLog(ctx context.Context, req domain.Conditions, result domain.PredictionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = appendBounded(r.predictions, result)
	return nil
}

// SaveDispatchLog records the outcome in memory
func (r *MockRepository) SaveDispatchLog(ctx context.Context, actions []string, outcome domain.NotificationOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = appendBounded(r.dispatches, outcome)
	return nil
}

// Predictions returns the recorded prediction results
func (r *MockRepository) Predictions() []domain.PredictionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PredictionResult(nil), r.predictions...)
}

// Dispatches returns the recorded dispatch outcomes
func (r *MockRepository) Dispatches() []domain.NotificationOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NotificationOutcome(nil), r.dispatches...)
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

func appendBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > mockRetain {
		s = s[len(s)-mockRetain:]
	}
	return s
}
