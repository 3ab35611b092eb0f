package matchmaking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/rankpoint"
)

type fakeRankClient struct {
	mu    sync.Mutex
	calls int
	err   error
	resp  rankpoint.LookupResponse
}

func (f *fakeRankClient) Lookup(ctx context.Context, sheepUserID, wolfUserID int64) (*rankpoint.LookupResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	resp := f.resp
	return &resp, nil
}

func (f *fakeRankClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGateway struct {
	mu        sync.Mutex
	delivered []*models.MatchResult
	err       error
}

func (f *fakeGateway) Deliver(ctx context.Context, result *models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, result)
	return nil
}

func (f *fakeGateway) results() []*models.MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.MatchResult, len(f.delivered))
	copy(out, f.delivered)
	return out
}

func newTestProcessor(t *testing.T, rank *fakeRankClient, gw *fakeGateway, maxRetry int) (*Processor, *Serializer, *Store) {
	t.Helper()

	serializer := NewSerializer()
	serializer.Start()
	t.Cleanup(serializer.Stop)

	store := NewStore(maxRetry)
	processor := NewProcessor(serializer, store, rank, gw, nil, nil)

	return processor, serializer, store
}

func confirmedPair(t *testing.T, store *Store) models.Pair {
	t.Helper()

	store.Enqueue(newRequest(1, 100, models.FactionSheep, 1, 500))
	store.Enqueue(newRequest(2, 200, models.FactionWolf, 1, 480))

	pairs := store.ConfirmMatches()
	require.Len(t, pairs, 1)
	return pairs[0]
}

func TestProcessor_SuccessfulDelivery(t *testing.T) {
	rank := &fakeRankClient{resp: rankpoint.LookupResponse{
		SheepWinPoint:  15,
		SheepLosePoint: -12,
		WolfWinPoint:   17,
		WolfLosePoint:  -10,
	}}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	pair := confirmedPair(t, store)
	pair.Sheep.UserName = "shepherd"
	pair.Wolf.UserName = "howler"

	processor.Process(context.Background(), pair)
	flush(t, serializer)

	results := gw.results()
	require.Len(t, results, 1)
	result := results[0]

	assert.NotEmpty(t, result.MatchID)
	assert.Equal(t, int32(1), result.MapID)
	assert.Equal(t, int64(1), result.Sheep.UserID)
	assert.Equal(t, "shepherd", result.Sheep.UserName)
	assert.Equal(t, 15, result.Sheep.WinPoint)
	assert.Equal(t, -12, result.Sheep.LosePoint)
	assert.Equal(t, int64(2), result.Wolf.UserID)
	assert.Equal(t, 17, result.Wolf.WinPoint)
	assert.Equal(t, -10, result.Wolf.LosePoint)
	assert.False(t, result.AISimulation)
	assert.False(t, result.TestMatch)
}

func TestProcessor_AISimulationFlag(t *testing.T) {
	rank := &fakeRankClient{}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	sheep := newRequest(1, 100, models.FactionSheep, 1, 500)
	sheep.IsAI = true
	wolf := newRequest(2, 200, models.FactionWolf, 1, 480)
	wolf.IsAI = true
	store.Enqueue(sheep)
	store.Enqueue(wolf)
	pairs := store.ConfirmMatches()
	require.Len(t, pairs, 1)

	processor.Process(context.Background(), pairs[0])
	flush(t, serializer)

	results := gw.results()
	require.Len(t, results, 1)
	assert.True(t, results[0].AISimulation)
}

func TestProcessor_LookupFailureRequeuesBoth(t *testing.T) {
	rank := &fakeRankClient{err: errors.New("rank service down")}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	pair := confirmedPair(t, store)

	processor.Process(context.Background(), pair)
	flush(t, serializer)

	// Both participants must be back in their queues.
	pairs := store.ConfirmMatches()
	require.Len(t, pairs, 1)
	assert.Equal(t, int64(1), pairs[0].Sheep.UserID)
	assert.Equal(t, int64(2), pairs[0].Wolf.UserID)
	assert.Empty(t, gw.results())
}

func TestProcessor_RetryCapDropsBoth(t *testing.T) {
	rank := &fakeRankClient{err: errors.New("rank service down")}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	pair := confirmedPair(t, store)

	// Three failures: requeued each time.
	for i := 0; i < 3; i++ {
		processor.Process(context.Background(), pair)
		flush(t, serializer)

		pairs := store.ConfirmMatches()
		require.Len(t, pairs, 1, "failure %d should requeue the pair", i+1)
		pair = pairs[0]
	}

	// Fourth failure: retry cap exceeded, neither side returns.
	processor.Process(context.Background(), pair)
	flush(t, serializer)

	assert.Empty(t, store.ConfirmMatches())
	assert.Empty(t, store.retryCount)
}

func TestProcessor_OneSideExhaustedDropsBoth(t *testing.T) {
	rank := &fakeRankClient{err: errors.New("rank service down")}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	pair := confirmedPair(t, store)

	// Sheep side has already burned through its retries.
	for i := 0; i < 3; i++ {
		require.True(t, store.IncrementRetry(pair.Sheep.Key()))
	}

	processor.Process(context.Background(), pair)
	flush(t, serializer)

	// Pairing is atomic: the wolf side had retries left but is dropped too.
	assert.Empty(t, store.ConfirmMatches())
}

func TestProcessor_DeliveryFailureNotRetried(t *testing.T) {
	rank := &fakeRankClient{}
	gw := &fakeGateway{err: errors.New("gateway unreachable")}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	pair := confirmedPair(t, store)

	processor.Process(context.Background(), pair)
	flush(t, serializer)

	// Only the rank lookup is retried; a failed delivery leaves the queues alone.
	assert.Empty(t, store.ConfirmMatches())
	assert.Equal(t, 1, rank.callCount())
}

func TestProcessor_TestMatchPairsAgainstOpposingHead(t *testing.T) {
	rank := &fakeRankClient{}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	serializer.Push(func() {
		store.Enqueue(newRequest(2, 200, models.FactionWolf, 1, 480))
	})

	req := newRequest(1, 100, models.FactionSheep, 1, 500)
	processor.ProcessTest(req)

	require.Eventually(t, func() bool {
		return len(gw.results()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	result := gw.results()[0]
	assert.True(t, result.TestMatch)
	assert.Equal(t, int64(1), result.Sheep.UserID)
	assert.Equal(t, int64(2), result.Wolf.UserID)
}

func TestProcessor_TestMatchSelfPair(t *testing.T) {
	rank := &fakeRankClient{}
	gw := &fakeGateway{}
	processor, _, _ := newTestProcessor(t, rank, gw, 3)

	req := newRequest(7, 700, models.FactionWolf, 3, 100)
	processor.ProcessTest(req)

	require.Eventually(t, func() bool {
		return len(gw.results()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	result := gw.results()[0]
	assert.True(t, result.TestMatch)
	assert.Equal(t, int64(7), result.Sheep.UserID)
	assert.Equal(t, int64(7), result.Wolf.UserID)
}

func TestProcessor_TestMatchLookupFailureSwallowed(t *testing.T) {
	rank := &fakeRankClient{err: errors.New("rank service down")}
	gw := &fakeGateway{}
	processor, serializer, store := newTestProcessor(t, rank, gw, 3)

	req := newRequest(1, 100, models.FactionSheep, 1, 500)
	processor.ProcessTest(req)

	flush(t, serializer)
	time.Sleep(50 * time.Millisecond) // let the detached lookup goroutine finish

	assert.Empty(t, gw.results())
	assert.Empty(t, store.ConfirmMatches(), "test match failures are not requeued")
}
