package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/it-support-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/mocks"
	"github.com/lorrc/it-support-portal/internal/core/ports"
	"github.com/lorrc/it-support-portal/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv ports.KeyValueStore, opts ...services.StoreOption) *services.TicketStore {
	t.Helper()
	opts = append([]services.StoreOption{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	store := services.NewTicketStore(kv, opts...)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestTicketStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("absent keys default to empty list and counter 1", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())

		assert.Empty(t, store.All())
		assert.NotNil(t, store.All())
		assert.Equal(t, int64(1), store.Counter())
	})

	t.Run("ids continue from the persisted counter", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, kv.SetMany(ctx, ports.Entry{Key: ports.TicketCounterKey, Value: []byte("10")}))

		store := newTestStore(t, kv)
		ticket, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})

		require.NoError(t, err)
		assert.Equal(t, int64(10), ticket.ID)
		assert.Equal(t, int64(11), store.Counter())
	})

	t.Run("lagging counter is repaired", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, kv.SetMany(ctx,
			ports.Entry{Key: ports.TicketsKey, Value: []byte(`[{"id":4,"name":"A","issue":"B","status":"Open","priority":"Medium","createdAt":"x"}]`)},
			ports.Entry{Key: ports.TicketCounterKey, Value: []byte("2")},
		))

		store := newTestStore(t, kv)

		assert.Equal(t, int64(5), store.Counter())
	})

	t.Run("malformed tickets fail fast", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, kv.SetMany(ctx, ports.Entry{Key: ports.TicketsKey, Value: []byte("{not json")}))

		store := services.NewTicketStore(kv)
		err := store.Load(ctx)

		assert.ErrorIs(t, err, apperrors.ErrCorruptStorage)
	})

	t.Run("malformed counter fails fast", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, kv.SetMany(ctx, ports.Entry{Key: ports.TicketCounterKey, Value: []byte(`"seven"`)}))

		err := services.NewTicketStore(kv).Load(ctx)

		assert.ErrorIs(t, err, apperrors.ErrCorruptStorage)
	})

	t.Run("malformed values reset when configured", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, kv.SetMany(ctx,
			ports.Entry{Key: ports.TicketsKey, Value: []byte("{not json")},
			ports.Entry{Key: ports.TicketCounterKey, Value: []byte("oops")},
		))

		store := newTestStore(t, kv, services.WithResetOnCorrupt(true))

		assert.Empty(t, store.All())
		assert.Equal(t, int64(1), store.Counter())
	})

	invalid := []struct {
		name  string
		value string
	}{
		{"wrong field type", `[{"id":"7","name":"Ghost","issue":"x","status":"Open","priority":"Low","createdAt":"x"}]`},
		{"unknown status", `[{"id":1,"name":"A","issue":"B","status":"Bogus","priority":"Low","createdAt":"x"}]`},
		{"unknown priority", `[{"id":1,"name":"A","issue":"B","status":"Open","priority":"Nope","createdAt":"x"}]`},
		{"missing priority", `[{"id":1,"name":"A","issue":"B","status":"Open","createdAt":"x"}]`},
		{"zero id", `[{"id":0,"name":"A","issue":"B","status":"Open","priority":"Low","createdAt":"x"}]`},
		{"negative id", `[{"id":-3,"name":"A","issue":"B","status":"Open","priority":"Low","createdAt":"x"}]`},
		{"duplicate ids", `[{"id":1,"name":"A","issue":"B","status":"Open","priority":"Low","createdAt":"x"},{"id":1,"name":"C","issue":"D","status":"Closed","priority":"High","createdAt":"x"}]`},
		{"not an array", `{"id":1}`},
	}

	for _, tt := range invalid {
		t.Run("invalid tickets fail fast: "+tt.name, func(t *testing.T) {
			kv := memory.NewKVStore()
			require.NoError(t, kv.SetMany(ctx, ports.Entry{Key: ports.TicketsKey, Value: []byte(tt.value)}))

			store := services.NewTicketStore(kv)
			err := store.Load(ctx)

			assert.ErrorIs(t, err, apperrors.ErrCorruptStorage)
			assert.Empty(t, store.All())
		})

		t.Run("invalid tickets reset when configured: "+tt.name, func(t *testing.T) {
			kv := memory.NewKVStore()
			require.NoError(t, kv.SetMany(ctx,
				ports.Entry{Key: ports.TicketsKey, Value: []byte(tt.value)},
				ports.Entry{Key: ports.TicketCounterKey, Value: []byte("1")},
			))

			store := newTestStore(t, kv, services.WithResetOnCorrupt(true))

			assert.Empty(t, store.All())
			assert.Equal(t, int64(1), store.Counter())
		})
	}

	t.Run("failed load keeps previous state", func(t *testing.T) {
		kv := memory.NewKVStore()
		store := newTestStore(t, kv)
		_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
		require.NoError(t, err)

		require.NoError(t, kv.SetMany(ctx, ports.Entry{Key: ports.TicketsKey, Value: []byte(`[{"id":"bad"}]`)}))

		assert.ErrorIs(t, store.Load(ctx), apperrors.ErrCorruptStorage)
		require.Len(t, store.All(), 1)
		assert.Equal(t, "Alice", store.All()[0].Name)
	})

	t.Run("backend errors are returned", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Get", ctx, ports.TicketsKey).Return(nil, errors.New("connection refused"))

		err := services.NewTicketStore(kv).Load(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NotErrorIs(t, err, apperrors.ErrCorruptStorage)
	})
}

func TestTicketStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ids are strictly increasing from 1", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())

		var last int64
		for i := 0; i < 5; i++ {
			ticket, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
			require.NoError(t, err)
			if i == 0 {
				assert.Equal(t, int64(1), ticket.ID)
			}
			assert.Greater(t, ticket.ID, last)
			last = ticket.ID
		}
		assert.Equal(t, int64(6), store.Counter())
	})

	t.Run("defaults and trimming", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())

		ticket, err := store.Create(ctx, domain.TicketParams{Name: "  Alice ", Issue: " Printer jam\n"})

		require.NoError(t, err)
		assert.Equal(t, domain.Ticket{
			ID:        1,
			Name:      "Alice",
			Issue:     "Printer jam",
			Status:    domain.StatusOpen,
			Priority:  domain.PriorityMedium,
			CreatedAt: "10/19/2026, 9:30:00 AM",
		}, *ticket)
	})

	tests := []struct {
		name    string
		params  domain.TicketParams
		wantErr []error
	}{
		{"empty name", domain.TicketParams{Name: "", Issue: "Printer jam"}, []error{apperrors.ErrNameRequired}},
		{"whitespace name", domain.TicketParams{Name: " \t ", Issue: "Printer jam"}, []error{apperrors.ErrNameRequired}},
		{"empty issue", domain.TicketParams{Name: "Alice", Issue: ""}, []error{apperrors.ErrIssueRequired}},
		{"whitespace issue", domain.TicketParams{Name: "Alice", Issue: "\n "}, []error{apperrors.ErrIssueRequired}},
		{"both empty", domain.TicketParams{}, []error{apperrors.ErrNameRequired, apperrors.ErrIssueRequired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.NewKVStore()
			store := newTestStore(t, kv)
			_, err := store.Create(ctx, domain.TicketParams{Name: "Existing", Issue: "Ticket"})
			require.NoError(t, err)

			ticket, err := store.Create(ctx, tt.params)

			assert.Nil(t, ticket)
			var validationErr *apperrors.ValidationErrors
			require.ErrorAs(t, err, &validationErr)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			assert.Len(t, store.All(), 1)
			assert.Equal(t, int64(2), store.Counter())

			persisted, err := kv.Get(ctx, ports.TicketCounterKey)
			require.NoError(t, err)
			assert.Equal(t, "2", string(persisted))
		})
	}

	t.Run("persist failure rolls back", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Get", ctx, mock.Anything).Return(nil, apperrors.ErrKeyNotFound)
		kv.On("SetMany", ctx, mock.Anything).Return(errors.New("disk full"))

		store := newTestStore(t, kv)
		ticket, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})

		assert.Nil(t, ticket)
		assert.ErrorContains(t, err, "disk full")
		assert.Empty(t, store.All())
		assert.Equal(t, int64(1), store.Counter())
	})

	t.Run("writes both keys in one call", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Get", ctx, mock.Anything).Return(nil, apperrors.ErrKeyNotFound)
		kv.On("SetMany", ctx, mock.MatchedBy(func(entries []ports.Entry) bool {
			return len(entries) == 2 &&
				entries[0].Key == ports.TicketsKey &&
				entries[1].Key == ports.TicketCounterKey &&
				string(entries[1].Value) == "2"
		})).Return(nil).Once()

		store := newTestStore(t, kv)
		_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})

		require.NoError(t, err)
		kv.AssertExpectations(t)
	})
}

func TestTicketStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("submit then triage", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())

		alice, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), alice.ID)
		assert.Equal(t, domain.StatusOpen, alice.Status)
		assert.Equal(t, domain.PriorityMedium, alice.Priority)

		bob, err := store.Create(ctx, domain.TicketParams{Name: "Bob", Issue: "VPN down"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), bob.ID)

		updated, err := store.Update(ctx, ports.UpdateTicketParams{
			TicketID: 1,
			Status:   domain.StatusClosed,
			Priority: domain.PriorityLow,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, updated.Status)
		assert.Equal(t, domain.PriorityLow, updated.Priority)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, alice.CreatedAt, updated.CreatedAt)

		assert.Equal(t, 1, domain.CountTickets(store.All()).Open)
	})

	t.Run("unknown id leaves the list unchanged", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())
		_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
		require.NoError(t, err)
		before := store.All()

		ticket, err := store.Update(ctx, ports.UpdateTicketParams{
			TicketID: 42,
			Status:   domain.StatusClosed,
			Priority: domain.PriorityHigh,
		})

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
		assert.Equal(t, before, store.All())
	})

	t.Run("invalid enums are rejected", func(t *testing.T) {
		store := newTestStore(t, memory.NewKVStore())
		_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
		require.NoError(t, err)

		_, err = store.Update(ctx, ports.UpdateTicketParams{
			TicketID: 1,
			Status:   domain.TicketStatus("Pending"),
			Priority: domain.TicketPriority("Urgent"),
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
		ticket, err := store.Get(1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, ticket.Status)
	})

	t.Run("persist failure rolls back", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Get", ctx, mock.Anything).Return(nil, apperrors.ErrKeyNotFound)
		kv.On("SetMany", ctx, mock.Anything).Return(nil).Once()
		kv.On("SetMany", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		store := newTestStore(t, kv)
		_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
		require.NoError(t, err)

		_, err = store.Update(ctx, ports.UpdateTicketParams{
			TicketID: 1,
			Status:   domain.StatusClosed,
			Priority: domain.PriorityHigh,
		})

		assert.ErrorContains(t, err, "disk full")
		ticket, err := store.Get(1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, ticket.Status)
		assert.Equal(t, domain.PriorityMedium, ticket.Priority)
	})
}

func TestTicketStore_ReloadReproducesState(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()

	store := newTestStore(t, kv)
	_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.TicketParams{Name: "Bob", Issue: "VPN down"})
	require.NoError(t, err)
	_, err = store.Update(ctx, ports.UpdateTicketParams{TicketID: 2, Status: domain.StatusInProgress, Priority: domain.PriorityHigh})
	require.NoError(t, err)

	restarted := newTestStore(t, kv)

	assert.Equal(t, store.All(), restarted.All())
	assert.Equal(t, store.Counter(), restarted.Counter())
}

func TestTicketStore_AllIsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.NewKVStore())
	_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)

	snapshot := store.All()
	snapshot[0].Status = domain.StatusClosed

	ticket, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
}

func TestTicketStore_Broadcasts(t *testing.T) {
	ctx := context.Background()
	broadcaster := mocks.NewMockEventBroadcaster()
	broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventTicketCreated && e.TicketID == 1 && e.Counts.Open == 1
	})).Return(nil).Once()
	broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventTicketUpdated && e.Ticket.Status == domain.StatusClosed && e.Counts.Open == 0 && e.Counts.Closed == 1
	})).Return(nil).Once()

	store := newTestStore(t, memory.NewKVStore(), services.WithBroadcaster(broadcaster))

	_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)
	_, err = store.Update(ctx, ports.UpdateTicketParams{TicketID: 1, Status: domain.StatusClosed, Priority: domain.PriorityLow})
	require.NoError(t, err)

	// failed mutations publish nothing
	_, _ = store.Create(ctx, domain.TicketParams{})
	_, _ = store.Update(ctx, ports.UpdateTicketParams{TicketID: 9, Status: domain.StatusOpen, Priority: domain.PriorityLow})

	broadcaster.AssertExpectations(t)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.NewKVStore())

	n, err := services.SeedDemo(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tickets := store.All()
	require.Len(t, tickets, 3)
	assert.Equal(t, domain.StatusOpen, tickets[0].Status)
	assert.Equal(t, domain.PriorityHigh, tickets[0].Priority)
	assert.Equal(t, domain.StatusInProgress, tickets[1].Status)
	assert.Equal(t, domain.StatusClosed, tickets[2].Status)
	assert.Equal(t, domain.PriorityLow, tickets[2].Priority)

	n, err = services.SeedDemo(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, store.All(), 3)
}
