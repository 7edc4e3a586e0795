package store

import (
	"testing"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingEvent(id string) Event {
	return Event{
		ID:     id,
		Type:   EventTransfer,
		Token:  token.USDC,
		Amount: "10",
		From:   testAccount,
		To:     "0x1d70d57ccd2798323232b2dd027b3abca5c00091",
		Status: StatusPending,
		TxHash: id,
	}
}

func confirmedEvent(id string, typ EventType) Event {
	ev := pendingEvent(id)
	ev.Type = typ
	ev.Status = StatusSuccess
	return ev
}

func TestAppendOptimisticPrepends(t *testing.T) {
	s := NewHistoryStore()
	s.SetConfirmed([]Event{confirmedEvent("0x1", EventMint)})

	s.AppendOptimistic(pendingEvent("0x2"))

	evs := s.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "0x2", evs[0].ID)
	assert.Equal(t, StatusPending, evs[0].Status)
	assert.Equal(t, "0x1", evs[1].ID)
}

func TestAppendOptimisticReplacesSameID(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0x2"))
	s.AppendOptimistic(pendingEvent("0x2"))

	assert.Len(t, s.Events(), 1)
}

func TestResolveOptimisticFlipsStatusInPlace(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0x2"))

	require.True(t, s.ResolveOptimistic("0x2", StatusFailed))

	evs := s.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, "0x2", evs[0].ID)
	assert.Equal(t, StatusFailed, evs[0].Status)
}

func TestResolveOptimisticUnknownID(t *testing.T) {
	s := NewHistoryStore()
	assert.False(t, s.ResolveOptimistic("0xnope", StatusFailed))
}

func TestConfirmedSupersedesPendingByID(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0x2"))

	s.SetConfirmed([]Event{confirmedEvent("0x2", EventTransfer)})

	evs := s.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, StatusSuccess, evs[0].Status)
}

func TestFailedEntriesSurviveRefetch(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0xbad"))
	s.ResolveOptimistic("0xbad", StatusFailed)

	// The failed tx never appears in confirmed logs.
	s.SetConfirmed([]Event{confirmedEvent("0x1", EventMint)})
	s.SetConfirmed([]Event{confirmedEvent("0x1", EventMint)})

	evs := s.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "0xbad", evs[0].ID)
	assert.Equal(t, StatusFailed, evs[0].Status)
}

func TestRefetchIsIdempotent(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0x2"))
	confirmed := []Event{
		confirmedEvent("0x2", EventTransfer),
		confirmedEvent("0x1", EventMint),
	}

	s.SetConfirmed(confirmed)
	first := s.Events()

	// Unchanged chain state: same list again; the superseded pending entry
	// must not reappear.
	s.SetConfirmed(confirmed)
	assert.Equal(t, first, s.Events())
}

func TestSetErrorPreservesConfirmedList(t *testing.T) {
	s := NewHistoryStore()
	s.SetConfirmed([]Event{confirmedEvent("0x1", EventMint)})

	s.SetError("log query failed")

	assert.Len(t, s.Events(), 1)
	assert.Equal(t, "log query failed", s.Err())
	assert.False(t, s.Loading())
}

func TestSetConfirmedClearsError(t *testing.T) {
	s := NewHistoryStore()
	s.SetError("boom")
	s.SetConfirmed(nil)
	assert.Empty(t, s.Err())
}

func TestReset(t *testing.T) {
	s := NewHistoryStore()
	s.AppendOptimistic(pendingEvent("0x2"))
	s.SetConfirmed([]Event{confirmedEvent("0x1", EventMint)})

	s.Reset()

	assert.Empty(t, s.Events())
	assert.Empty(t, s.Err())
}

func TestSummaryCountsByType(t *testing.T) {
	s := NewHistoryStore()
	s.SetConfirmed([]Event{
		confirmedEvent("0x1", EventMint),
		confirmedEvent("0x2", EventTransfer),
		confirmedEvent("0x3", EventTransfer),
		confirmedEvent("0x4", EventApprove),
	})

	sum := s.Summary()
	assert.Equal(t, 1, sum[EventMint])
	assert.Equal(t, 2, sum[EventTransfer])
	assert.Equal(t, 1, sum[EventApprove])
}

func TestHistoryOnChangeFires(t *testing.T) {
	s := NewHistoryStore()
	var calls int
	s.OnChange(func() { calls++ })

	s.AppendOptimistic(pendingEvent("0x2"))
	s.ResolveOptimistic("0x2", StatusFailed)
	assert.Equal(t, 2, calls)
}
