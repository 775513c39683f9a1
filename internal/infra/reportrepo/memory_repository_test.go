package reportrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, kind := range []analytics.Kind{analytics.KindCheckIn, analytics.KindPeriod, analytics.KindCheckIn, analytics.KindCheckIn} {
		require.NoError(t, repo.Save(ctx, report.Report{
			ID:        uuid.New(),
			UserID:    7,
			Kind:      kind,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Save(ctx, report.Report{ID: uuid.New(), UserID: 8, Kind: analytics.KindCheckIn, CreatedAt: base}))

	all, err := repo.ListByUser(ctx, 7, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	checkIns, err := repo.ListByUser(ctx, 7, analytics.KindCheckIn, 2)
	require.NoError(t, err)
	require.Len(t, checkIns, 2)
	require.Equal(t, base.Add(3*time.Hour), checkIns[0].CreatedAt)
	require.Equal(t, base.Add(2*time.Hour), checkIns[1].CreatedAt)

	none, err := repo.ListByUser(ctx, 99, "", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}
