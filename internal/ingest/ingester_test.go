package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3dash/internal/chain"
	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccount = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	otherAddr   = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	daiAddr     = "0x1d70d57ccd2798323232b2dd027b3abca5c00091"
	usdcAddr    = "0xc891481a0aac630f4d89744ccd2c7d2c4215fd47"
)

// fakeSource serves canned logs keyed by contract address + first topic.
type fakeSource struct {
	mu      sync.Mutex
	latest  uint64
	logs    map[string][]chain.LogEntry
	failing bool

	queries []string // "address/topic/fromBlock" for window assertions
}

func (f *fakeSource) GetBlockNumber(_ context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, fmt.Errorf("rpc unreachable")
	}
	return f.latest, nil
}

func (f *fakeSource) GetLogs(_ context.Context, address string, topics []string, fromBlock, _ string) ([]chain.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("rpc unreachable")
	}
	key := address + "/" + topics[0]
	f.queries = append(f.queries, key+"/"+fromBlock)
	return f.logs[key], nil
}

func (f *fakeSource) add(address, topic string, l chain.LogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logs == nil {
		f.logs = make(map[string][]chain.LogEntry)
	}
	key := address + "/" + topic
	f.logs[key] = append(f.logs[key], l)
}

func topicFor(addr string) string {
	return "0x000000000000000000000000" + addr[2:]
}

func transferLog(from, to, txHash string, block uint64) chain.LogEntry {
	return chain.LogEntry{
		Address:     daiAddr,
		Topics:      []string{token.TopicTransfer, topicFor(from), topicFor(to)},
		Data:        "0x00000000000000000000000000000000000000000000000029a2241af62c0000", // 3e18
		BlockNumber: fmt.Sprintf("0x%x", block),
		TxHash:      txHash,
	}
}

func approvalLog(owner, spender, txHash string, block uint64) chain.LogEntry {
	return chain.LogEntry{
		Address:     usdcAddr,
		Topics:      []string{token.TopicApproval, topicFor(owner), topicFor(spender)},
		Data:        "0x0000000000000000000000000000000000000000000000000000000001c9c380", // 30e6
		BlockNumber: fmt.Sprintf("0x%x", block),
		TxHash:      txHash,
	}
}

func newFixture(t *testing.T) (*Ingester, *fakeSource, *store.HistoryStore) {
	t.Helper()
	reg, err := token.NewRegistry([]token.Token{
		{Symbol: token.DAI, Address: daiAddr, Decimals: 18},
		{Symbol: token.USDC, Address: usdcAddr, Decimals: 6},
	})
	require.NoError(t, err)
	src := &fakeSource{latest: 100_000}
	hist := store.NewHistoryStore()
	return NewIngester(src, reg, hist, 0, nil), src, hist
}

func TestFetchNormalizesTransfer(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xt1", 99_000))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 1)

	ev := evs[0]
	assert.Equal(t, "0xt1", ev.ID)
	assert.Equal(t, store.EventTransfer, ev.Type)
	assert.Equal(t, token.DAI, ev.Token)
	assert.Equal(t, "3", ev.Amount)
	assert.Equal(t, testAccount, ev.From)
	assert.Equal(t, otherAddr, ev.To)
	assert.Equal(t, store.StatusSuccess, ev.Status)
	assert.Equal(t, uint64(99_000), ev.Block)
}

func TestFetchClassifiesMint(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(token.ZeroAddress, testAccount, "0xm1", 99_500))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, store.EventMint, evs[0].Type)
}

func TestFetchNormalizesApproval(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(usdcAddr, token.TopicApproval, approvalLog(testAccount, otherAddr, "0xa1", 99_800))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 1)

	ev := evs[0]
	assert.Equal(t, store.EventApprove, ev.Type)
	assert.Equal(t, token.USDC, ev.Token)
	assert.Equal(t, "30", ev.Amount)
	assert.Equal(t, testAccount, ev.From)
	assert.Equal(t, otherAddr, ev.To)
}

func TestFetchFiltersForeignEvents(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(otherAddr, otherAddr, "0xx1", 99_000))
	src.add(usdcAddr, token.TopicApproval, approvalLog(otherAddr, otherAddr, "0xx2", 99_100))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestFetchIncludesIncomingTransfers(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(otherAddr, testAccount, "0xin", 99_000))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, testAccount, evs[0].To)
}

func TestFetchSortsNewestFirst(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xold", 98_000))
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xnew", 99_999))
	src.add(usdcAddr, token.TopicApproval, approvalLog(testAccount, otherAddr, "0xmid", 99_000))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, "0xnew", evs[0].ID)
	assert.Equal(t, "0xmid", evs[1].ID)
	assert.Equal(t, "0xold", evs[2].ID)
}

func TestFetchBoundsQueryWindow(t *testing.T) {
	ing, src, _ := newFixture(t)

	_, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)

	// latest 100_000 minus the default 10_000-block window.
	want := fmt.Sprintf("0x%x", 90_000)
	require.Len(t, src.queries, 4) // two filters per token
	for _, q := range src.queries {
		assert.Contains(t, q, "/"+want)
	}
}

func TestFetchSkipsMalformedLogs(t *testing.T) {
	ing, src, _ := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, chain.LogEntry{
		Topics: []string{token.TopicTransfer}, // indexed topics missing
		TxHash: "0xbad",
	})
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xok", 99_000))

	evs, err := ing.Fetch(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "0xok", evs[0].ID)
}

func TestRefreshDrivesHistoryStore(t *testing.T) {
	ing, src, hist := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(token.ZeroAddress, testAccount, "0xm1", 99_000))

	require.NoError(t, ing.Refresh(context.Background(), testAccount))

	evs := hist.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, store.EventMint, evs[0].Type)
	assert.False(t, hist.Loading())
	assert.Empty(t, hist.Err())
}

func TestRefreshErrorPreservesPreviousList(t *testing.T) {
	ing, src, hist := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xt1", 99_000))
	require.NoError(t, ing.Refresh(context.Background(), testAccount))

	src.failing = true
	err := ing.Refresh(context.Background(), testAccount)
	assert.Error(t, err)

	assert.Len(t, hist.Events(), 1) // stale-but-available
	assert.Contains(t, hist.Err(), "failed to fetch events")
}

func TestRefreshEmptyAccountResets(t *testing.T) {
	ing, src, hist := newFixture(t)
	src.add(daiAddr, token.TopicTransfer, transferLog(testAccount, otherAddr, "0xt1", 99_000))
	require.NoError(t, ing.Refresh(context.Background(), testAccount))
	require.Len(t, hist.Events(), 1)

	require.NoError(t, ing.Refresh(context.Background(), ""))

	assert.Empty(t, hist.Events())
}
