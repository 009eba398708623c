package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lorrc/it-support-portal/internal/adapters/secondary/file"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
	"github.com/lorrc/it-support-portal/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetSet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := file.NewKVStore(filepath.Join(dir, "data"))
	require.NoError(t, err)
	require.NoError(t, kv.Ping(ctx))

	_, err = kv.Get(ctx, ports.TicketsKey)
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)

	require.NoError(t, kv.SetMany(ctx,
		ports.Entry{Key: ports.TicketsKey, Value: []byte(`[]`)},
		ports.Entry{Key: ports.TicketCounterKey, Value: []byte(`3`)},
	))

	got, err := kv.Get(ctx, ports.TicketCounterKey)
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))

	onDisk, err := os.ReadFile(filepath.Join(dir, "data", "tickets.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(onDisk))

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestKVStore_RejectsPathKeys(t *testing.T) {
	kv, err := file.NewKVStore(t.TempDir())
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, kv.SetMany(context.Background(), ports.Entry{Key: "a/b", Value: []byte("1")}))
}

func TestKVStore_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clock := services.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })

	kv, err := file.NewKVStore(dir)
	require.NoError(t, err)
	store := services.NewTicketStore(kv, clock)
	require.NoError(t, store.Load(ctx))

	_, err = store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)
	_, err = store.Update(ctx, ports.UpdateTicketParams{TicketID: 1, Status: domain.StatusInProgress, Priority: domain.PriorityHigh})
	require.NoError(t, err)

	reopened, err := file.NewKVStore(dir)
	require.NoError(t, err)
	restarted := services.NewTicketStore(reopened, clock)
	require.NoError(t, restarted.Load(ctx))

	assert.Equal(t, store.All(), restarted.All())
	assert.Equal(t, int64(2), restarted.Counter())
}

func TestKVStore_CorruptFileFailsLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tickets.json"), []byte("not json"), 0o644))

	kv, err := file.NewKVStore(dir)
	require.NoError(t, err)

	err = services.NewTicketStore(kv).Load(ctx)
	assert.ErrorIs(t, err, apperrors.ErrCorruptStorage)
}
