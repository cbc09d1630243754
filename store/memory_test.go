package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/models"
	"ticket-marketplace/status"
)

func memoryTicket(id string) *models.Ticket {
	issuedAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &models.Ticket{
		ID:            id,
		EventID:       "event-1",
		OwnerID:       "alice",
		Status:        models.StatusIssued,
		PurchasePrice: decimal.NewFromInt(50),
		IssuedAt:      &issuedAt,
		Version:       1,
	}
}

func TestMemory_PutAndGet(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, memoryTicket("t1")))

	ticket, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", ticket.ID)
	assert.Equal(t, "alice", ticket.OwnerID)
}

func TestMemory_PutAssignsID(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	ticket := memoryTicket("")
	require.NoError(t, st.Put(ctx, ticket))

	assert.Len(t, ticket.ID, 15)

	got, err := st.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestMemory_GetNotFound(t *testing.T) {
	st := NewMemory()

	_, err := st.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestMemory_GetReturnsACopy(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, memoryTicket("t1")))

	first, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	first.OwnerID = "mallory"

	second, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.OwnerID)
}

func TestMemory_SoftDeletedIsAbsent(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	ticket := memoryTicket("t1")
	deletedAt := time.Now()
	ticket.DeletedAt = &deletedAt
	require.NoError(t, st.Put(ctx, ticket))

	_, err := st.Get(ctx, "t1")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)

	err = st.Transact(ctx, "t1", func(current *models.Ticket) (*models.Ticket, error) {
		t.Fatal("transact callback must not run for a deleted ticket")
		return current, nil
	})
	assert.ErrorIs(t, err, status.ErrTicketNotFound)

	tickets, err := st.Query(ctx, Filter{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestMemory_TransactCommit(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, memoryTicket("t1")))

	err := st.Transact(ctx, "t1", func(current *models.Ticket) (*models.Ticket, error) {
		next := current.Clone()
		next.OwnerID = "bob"
		next.Version++
		return next, nil
	})
	require.NoError(t, err)

	ticket, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "bob", ticket.OwnerID)
	assert.Equal(t, 2, ticket.Version)
}

func TestMemory_TransactAbortLeavesTicketUntouched(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, memoryTicket("t1")))

	err := st.Transact(ctx, "t1", func(current *models.Ticket) (*models.Ticket, error) {
		current.OwnerID = "bob"
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	ticket, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "alice", ticket.OwnerID)
	assert.Equal(t, 1, ticket.Version)
}

// Concurrent Transact calls on one ticket serialize; each callback sees
// the previous committer's value, so all increments land.
func TestMemory_TransactSerializes(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, memoryTicket("t1")))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Transact(ctx, "t1", func(current *models.Ticket) (*models.Ticket, error) {
				next := current.Clone()
				next.Version++
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ticket, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1+workers, ticket.Version)
}

func TestMemory_QueryFilters(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	alice1 := memoryTicket("a1")
	alice2 := memoryTicket("a2")
	alice2.Status = models.StatusListed
	bob := memoryTicket("b1")
	bob.OwnerID = "bob"
	bob.EventID = "event-2"

	require.NoError(t, st.Put(ctx, alice1))
	require.NoError(t, st.Put(ctx, alice2))
	require.NoError(t, st.Put(ctx, bob))

	byOwner, err := st.Query(ctx, Filter{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byEvent, err := st.Query(ctx, Filter{EventID: "event-2"})
	require.NoError(t, err)
	assert.Len(t, byEvent, 1)
	assert.Equal(t, "b1", byEvent[0].ID)

	byState, err := st.Query(ctx, Filter{States: []models.TicketStatus{models.StatusListed}})
	require.NoError(t, err)
	assert.Len(t, byState, 1)
	assert.Equal(t, "a2", byState[0].ID)

	combined, err := st.Query(ctx, Filter{
		OwnerID: "alice",
		States:  []models.TicketStatus{models.StatusIssued},
	})
	require.NoError(t, err)
	assert.Len(t, combined, 1)
	assert.Equal(t, "a1", combined[0].ID)
}

func TestMemory_QueryPreservesInsertionOrder(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, st.Put(ctx, memoryTicket(id)))
	}

	tickets, err := st.Query(ctx, Filter{})
	require.NoError(t, err)

	ids := make([]string, len(tickets))
	for i, ticket := range tickets {
		ids[i] = ticket.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}
