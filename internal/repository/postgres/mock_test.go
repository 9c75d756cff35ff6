package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthsurge/backend/internal/domain"
)

func TestMockRepository_RecordsEntries(t *testing.T) {
	r := NewMockRepository()
	ctx := context.Background()

	require.NoError(t, r.SavePredictionLog(ctx, domain.Conditions{AQI: 150}, domain.PredictionResult{PredictedPatients: 900}))
	require.NoError(t, r.SaveDispatchLog(ctx, []string{"a"}, domain.NotificationOutcome{Status: domain.StatusSuccess, SentCount: 2}))
	require.NoError(t, r.Health(ctx))

	require.Len(t, r.Predictions(), 1)
	assert.Equal(t, 900, r.Predictions()[0].PredictedPatients)
	require.Len(t, r.Dispatches(), 1)
	assert.Equal(t, 2, r.Dispatches()[0].SentCount)
}

func TestMockRepository_RetainsMostRecent(t *testing.T) {
	r := NewMockRepository()
	for i := 0; i < mockRetain+20; i++ {
		require.NoError(t, r.SavePredictionLog(context.Background(), domain.Conditions{}, domain.PredictionResult{PredictedPatients: i}))
	}

	got := r.Predictions()
	require.Len(t, got, mockRetain)
	assert.Equal(t, 20, got[0].PredictedPatients)
	assert.Equal(t, mockRetain+19, got[len(got)-1].PredictedPatients)
}
