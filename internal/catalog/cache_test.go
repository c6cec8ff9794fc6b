package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// scriptedSource serves its responses in order, repeating the last one, and
// optionally blocks every call until gate is closed.
type scriptedSource struct {
	mu        sync.Mutex
	responses [][]domain.ProductSummary
	err       error
	gate      chan struct{}
	calls     atomic.Int32
}

func (s *scriptedSource) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	n := int(s.calls.Add(1))
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, nil
	}
	if n > len(s.responses) {
		n = len(s.responses)
	}
	return s.responses[n-1], nil
}

func products(pairs ...any) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.ProductSummary{ID: int64(pairs[i].(int)), Name: pairs[i+1].(string)})
	}
	return out
}

func loadedCache(t *testing.T, items []domain.ProductSummary, opts ...Option) *Cache {
	t.Helper()
	c := New(&scriptedSource{responses: [][]domain.ProductSummary{items}}, opts...)
	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	require.Equal(t, Ready, c.Ready().State())
	return c
}

func TestInitialize_LastOccurrenceWins(t *testing.T) {
	c := loadedCache(t, products(1, "Brick", 2, "Sand", 3, "  BRICK ", 4, "Cement  Bag"))

	want := []Entry{
		{Name: "brick", ID: "3"},
		{Name: "cement bag", ID: "4"},
		{Name: "sand", ID: "2"},
	}
	if diff := cmp.Diff(want, c.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, c.Stale())
}

func TestInitialize_SkipsNamelessAndIdlessRows(t *testing.T) {
	c := loadedCache(t, products(1, "", 0, "Ghost", 5, "Gravel"))

	assert.Equal(t, 1, c.Len())
	_, ok := c.Resolve(Request{CandidateName: "ghost"})
	assert.False(t, ok)
}

func TestInitialize_EmptyCatalogIsReady(t *testing.T) {
	c := loadedCache(t, nil)

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Stale())
}

func TestInitialize_OnlyFirstCallLoads(t *testing.T) {
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}}
	c := New(src)

	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	c.Initialize(context.Background())
	time.Sleep(20 * time.Millisecond)

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestInitialize_FailureIsAbsorbed(t *testing.T) {
	src := &scriptedSource{err: errors.New("products fetch failed: 503")}
	c := New(src)

	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))

	assert.Equal(t, Failed, c.Ready().State())
	assert.Error(t, c.Ready().Err())
	_, ok := c.Resolve(Request{CandidateName: "Brick"})
	assert.False(t, ok)

	id, ok := c.Resolve(Request{CandidateID: "12"})
	assert.True(t, ok)
	assert.Equal(t, "12", id)
}

func TestResolve_NumericCandidateShortCircuits(t *testing.T) {
	c := loadedCache(t, products(7, "Cement Bag"))

	id, ok := c.Resolve(Request{CandidateID: "42", CandidateName: "Cement Bag"})
	require.True(t, ok)
	assert.Equal(t, "42", id)

	empty := New(&scriptedSource{})
	id, ok = empty.Resolve(Request{CandidateID: "42"})
	require.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestResolve_NameIsCaseAndWhitespaceInsensitive(t *testing.T) {
	c := loadedCache(t, products(7, "cement bag"))

	for _, name := range []string{"Cement Bag", "  CEMENT   bag ", "cement bag"} {
		id, ok := c.Resolve(Request{CandidateID: "local-cement", CandidateName: name})
		require.True(t, ok, name)
		assert.Equal(t, "7", id, name)
	}
}

func TestResolve_AbsentName(t *testing.T) {
	c := loadedCache(t, products(7, "Cement Bag"))

	_, ok := c.Resolve(Request{CandidateName: "Roof Tile", Element: NewCard("tile", "", "Roof Tile")})
	assert.False(t, ok)
}

func TestResolve_ElementCachedIDBeforeName(t *testing.T) {
	c := loadedCache(t, products(7, "Cement Bag"))

	card := NewCard("99", "Cement Bag", "Cement Bag")
	id, ok := c.Resolve(Request{CandidateID: "cement", CandidateName: "Cement Bag", Element: card})
	require.True(t, ok)
	assert.Equal(t, "99", id)

	card = NewCard("cement", "Cement Bag", "Cement Bag")
	id, ok = c.Resolve(Request{CandidateName: "Cement Bag", Element: card})
	require.True(t, ok)
	assert.Equal(t, "7", id)
}

func TestResolve_ElementTitleFallback(t *testing.T) {
	c := loadedCache(t, products(3, "Sand 50kg"))

	card := NewCard("", "sand", "Sand 50kg")
	id, ok := c.Resolve(Request{CandidateName: "sand", Element: card})
	require.True(t, ok)
	assert.Equal(t, "3", id)
}

func TestResolve_NonNumericCandidateIDAsName(t *testing.T) {
	c := loadedCache(t, products(1, "Brick"))

	id, ok := c.Resolve(Request{CandidateID: "brick"})
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestResolve_FuzzyMatchIsOptIn(t *testing.T) {
	items := products(1, "Red Brick", 2, "Sand")

	strict := loadedCache(t, items)
	_, ok := strict.Resolve(Request{CandidateName: "brick"})
	assert.False(t, ok)

	fuzzy := loadedCache(t, items, WithFuzzyMatch(true))
	id, ok := fuzzy.Resolve(Request{CandidateName: "brick"})
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestAwaitReady_ZeroTimeout(t *testing.T) {
	gate := make(chan struct{})
	c := New(&scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}, gate: gate})

	assert.False(t, c.AwaitReady(0), "before Initialize")
	c.Initialize(context.Background())
	assert.False(t, c.AwaitReady(0), "while loading")

	close(gate)
	require.True(t, c.AwaitReady(time.Second))
	assert.True(t, c.AwaitReady(0), "after settlement")
}

func TestAwaitReady_TimeoutLeavesLoadRunning(t *testing.T) {
	gate := make(chan struct{})
	c := New(&scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}, gate: gate})
	c.Initialize(context.Background())

	assert.False(t, c.AwaitReady(20*time.Millisecond))
	assert.Equal(t, Pending, c.Ready().State())

	close(gate)
	require.True(t, c.AwaitReady(time.Second))
	id, ok := c.Resolve(Request{CandidateName: "brick"})
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestForceRefresh_ReplacesMapping(t *testing.T) {
	src := &scriptedSource{responses: [][]domain.ProductSummary{
		products(1, "Brick", 2, "Sand"),
		products(3, "Cement"),
	}}
	c := New(src)
	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	before := c.Ready()

	require.True(t, c.ForceRefresh(context.Background()))

	assert.NotSame(t, before, c.Ready())
	assert.Equal(t, Ready, before.State(), "old instance never reverts")

	_, ok := c.Resolve(Request{CandidateName: "Brick"})
	assert.False(t, ok, "removed product must not survive a refresh")
	id, ok := c.Resolve(Request{CandidateName: "cement"})
	require.True(t, ok)
	assert.Equal(t, "3", id)
}

func TestForceRefresh_FailureLeavesEmptyMapping(t *testing.T) {
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}}
	c := loadedCacheFrom(t, src)

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.mu.Unlock()

	assert.False(t, c.ForceRefresh(context.Background()))
	assert.Equal(t, Failed, c.Ready().State())
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Stale())
}

func TestForceRefresh_ConcurrentCallersShareOneLoad(t *testing.T) {
	gate := make(chan struct{})
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}, gate: gate}
	c := New(src)

	var wg sync.WaitGroup
	results := make([]bool, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.ForceRefresh(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
	for i, ok := range results {
		assert.True(t, ok, "caller %d", i)
	}
	assert.Equal(t, 1, c.Len())
}

func TestTrack_AnnotatesListing(t *testing.T) {
	gate := make(chan struct{})
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick", 2, "Sand 50kg")}, gate: gate}
	c := New(src)

	byName := NewCard("brick-local", "Brick", "Red brick")
	byTitle := NewCard("", "", "Sand 50kg")
	unknown := NewCard("", "Tile", "Roof tile")
	c.Track(byName, byTitle, unknown)

	c.Initialize(context.Background())
	close(gate)
	require.True(t, c.AwaitReady(time.Second))

	assert.Equal(t, "1", byName.CachedID())
	assert.Equal(t, "2", byTitle.CachedID())
	assert.Equal(t, "", unknown.CachedID())

	late := NewCard("", "sand 50KG", "")
	c.Track(late)
	assert.Equal(t, "2", late.CachedID())

	id, ok := c.Resolve(Request{CandidateName: "something else", Element: byName})
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestForceRefresh_RetractsIDsOfRemovedProducts(t *testing.T) {
	src := &scriptedSource{responses: [][]domain.ProductSummary{
		products(1, "Brick"),
		products(2, "Sand"),
	}}
	c := New(src)
	card := NewCard("", "", "Brick")
	pinned := NewCard("", "", "Gravel")
	c.Track(card, pinned)

	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	require.Equal(t, "1", card.CachedID())
	pinned.SetCachedID("15")

	require.True(t, c.ForceRefresh(context.Background()))

	assert.Equal(t, "", card.CachedID())
	_, ok := c.Resolve(Request{Element: card})
	assert.False(t, ok, "removed product must resolve to absent")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "15", pinned.CachedID(), "ids set by the caller are kept")
}

func TestForceRefresh_FailureRetractsAnnotations(t *testing.T) {
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}}
	c := New(src)
	card := NewCard("", "Brick", "")
	c.Track(card)
	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	require.Equal(t, "1", card.CachedID())

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.mu.Unlock()

	assert.False(t, c.ForceRefresh(context.Background()))
	assert.Equal(t, "", card.CachedID())
}

func TestStale_MaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	src := &scriptedSource{responses: [][]domain.ProductSummary{products(1, "Brick")}}
	c := New(src, WithMaxAge(time.Minute), WithClock(clock))

	assert.True(t, c.Stale())
	require.True(t, c.ForceRefresh(context.Background()))
	assert.False(t, c.Stale())

	now = now.Add(2 * time.Minute)
	assert.True(t, c.Stale())
}

func loadedCacheFrom(t *testing.T, src *scriptedSource) *Cache {
	t.Helper()
	c := New(src)
	c.Initialize(context.Background())
	require.True(t, c.AwaitReady(time.Second))
	return c
}
