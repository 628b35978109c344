package repository

import (
	"context"
	"path/filepath"
	"testing"

	"ggst-replays/internal/database"
	"ggst-replays/internal/domain"
	"ggst-replays/internal/protocol"
	"ggst-replays/internal/protocol/protocoltest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *ReplayRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "replays.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReplayRepository(db, zerolog.Nop())
}

func TestUpsertBatchDeduplicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := protocoltest.SampleMatch(1)
	second := protocoltest.SampleMatch(2)

	n, err := repo.UpsertBatch(ctx, []domain.Match{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	renamed := first
	renamed.Players[0].Name = "new name"
	n, err = repo.UpsertBatch(ctx, []domain.Match{renamed})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.Key(), recent[0].Key())
	assert.Equal(t, first.Key(), recent[1].Key())
	assert.Equal(t, "new name", recent[1].Players[0].Name)
	assert.Equal(t, first.Floor, recent[1].Floor)
	assert.Equal(t, first.WinnerSide, recent[1].WinnerSide)
	assert.Equal(t, first.Players[1].Character, recent[1].Players[1].Character)
}

func TestSaveFailures(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bad := protocoltest.Record(protocoltest.SampleMatch(1))
	bad[2] = 0x42
	page := protocol.DecodePage(protocoltest.Page(bad))
	require.Len(t, page.Errors, 1)

	require.NoError(t, repo.SaveFailures(ctx, "run-1", page.Errors))
	require.NoError(t, repo.SaveFailures(ctx, "run-2", nil))

	stored, err := repo.FailuresForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, protocol.ReasonUnrecognizedFloor, stored[0].Reason)
	assert.Equal(t, page.Errors[0].RawHex(), stored[0].RawHex)
	assert.NotEmpty(t, stored[0].ID)
}
