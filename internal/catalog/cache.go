package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const refreshKey = "catalog"

// Source is the remote catalog the cache loads from.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
}

// Entry is one normalized name to id pair.
type Entry struct {
	Name string
	ID   string
}

// Request describes what a purchase flow knows about the product it wants.
// Any field may be empty.
type Request struct {
	CandidateID   string
	CandidateName string
	Element       Element
}

type Option func(*Cache)

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFuzzyMatch enables a last-resort substring match between the request
// name and catalog names. Off by default.
func WithFuzzyMatch(enabled bool) Option {
	return func(c *Cache) { c.fuzzy = enabled }
}

// WithMaxAge marks a loaded mapping stale once it is older than d. Zero means
// only an empty mapping is stale.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

type Cache struct {
	source Source
	logger *zap.Logger
	fuzzy  bool
	maxAge time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	entries  map[string]string
	loadedAt time.Time
	ready    *Readiness
	tracked  []Element
	started  bool
	// written holds the id the cache itself stored on each element, so a
	// refresh can take back ids it handed out without touching ids set by
	// the caller.
	written map[Element]string

	refresh singleflight.Group
}

func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		logger:  zap.NewNop(),
		now:     time.Now,
		entries: make(map[string]string),
		ready:   newReadiness(),
		written: make(map[Element]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize starts loading the catalog in the background and returns
// immediately. Only the first call has an effect.
func (c *Cache) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go func() {
		_, _, _ = c.refresh.Do(refreshKey, func() (any, error) {
			r := c.Ready()
			if st := r.State(); st != Pending {
				// A forced refresh got there first.
				return st == Ready, nil
			}
			return c.rebuild(ctx, r), nil
		})
	}()
}

// ForceRefresh drops the mapping along with the ids it wrote onto tracked
// elements, installs a new Readiness and reloads the catalog, blocking until the load settles. Concurrent callers share one
// rebuild. It reports whether the load succeeded.
func (c *Cache) ForceRefresh(ctx context.Context) bool {
	v, _, _ := c.refresh.Do(refreshKey, func() (any, error) {
		r := newReadiness()

		c.mu.Lock()
		c.entries = make(map[string]string)
		c.loadedAt = time.Time{}
		c.ready = r
		c.started = true
		c.retractLocked()
		c.mu.Unlock()

		return c.rebuild(ctx, r), nil
	})
	ok, _ := v.(bool)
	return ok
}

func (c *Cache) rebuild(ctx context.Context, r *Readiness) bool {
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.Error(err))
		r.settle(err)
		return false
	}

	entries := make(map[string]string, len(products))
	for _, p := range products {
		key := NormalizeName(p.Name)
		if key == "" || p.ID <= 0 {
			continue
		}
		entries[key] = strconv.FormatInt(p.ID, 10)
	}

	c.mu.Lock()
	c.entries = entries
	c.loadedAt = c.now()
	tracked := append([]Element(nil), c.tracked...)
	c.mu.Unlock()

	c.Annotate(tracked...)
	r.settle(nil)

	c.logger.Info("product mapping completed",
		zap.Int("products", len(entries)),
		zap.Int("annotated_candidates", len(tracked)),
	)
	return true
}

// Ready returns the Readiness of the current load. ForceRefresh replaces it,
// so callers should not hold on to the result across a refresh.
func (c *Cache) Ready() *Readiness {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// AwaitReady reports whether the current load settled within timeout. A
// timeout is not an error; the load keeps running.
func (c *Cache) AwaitReady(timeout time.Duration) bool {
	return c.Ready().Wait(timeout)
}

// Resolve maps a request to a canonical id. First match wins: explicit
// numeric id, numeric id cached on the element, normalized name, normalized
// element title, then the optional fuzzy match.
func (c *Cache) Resolve(req Request) (string, bool) {
	if id := strings.TrimSpace(req.CandidateID); IsCanonicalID(id) {
		return id, true
	}
	if req.Element != nil {
		if id := strings.TrimSpace(req.Element.CachedID()); IsCanonicalID(id) {
			return id, true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	name := req.CandidateName
	if strings.TrimSpace(name) == "" {
		// A non-numeric candidate id is usually a local slug such as "brick".
		name = req.CandidateID
	}
	if id, ok := c.lookupLocked(name); ok {
		return id, true
	}
	if req.Element != nil {
		if id, ok := c.lookupLocked(req.Element.Title()); ok {
			return id, true
		}
	}
	if c.fuzzy {
		return c.fuzzyLocked(name)
	}
	return "", false
}

func (c *Cache) lookupLocked(name string) (string, bool) {
	key := NormalizeName(name)
	if key == "" {
		return "", false
	}
	id, ok := c.entries[key]
	return id, ok
}

// fuzzyLocked returns the first key, in sorted order, that contains the
// needle or is contained by it.
func (c *Cache) fuzzyLocked(name string) (string, bool) {
	needle := NormalizeName(name)
	if needle == "" {
		return "", false
	}
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, needle) || strings.Contains(needle, k) {
			return c.entries[k], true
		}
	}
	return "", false
}

// Track registers listing elements to be annotated after every successful
// load. Elements tracked after a load are annotated right away.
func (c *Cache) Track(elements ...Element) {
	c.mu.Lock()
	c.tracked = append(c.tracked, elements...)
	loaded := !c.loadedAt.IsZero()
	c.mu.Unlock()

	if loaded {
		c.Annotate(elements...)
	}
}

// Annotate stores the resolved id on each element whose name or title is in
// the mapping. An element the cache annotated earlier but no longer matches
// loses that id. Elements must be comparable, typically pointers.
func (c *Cache) Annotate(elements ...Element) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, el := range elements {
		if el == nil {
			continue
		}
		id, ok := c.lookupLocked(el.CachedName())
		if !ok {
			id, ok = c.lookupLocked(el.Title())
		}
		if ok {
			el.SetCachedID(id)
			c.written[el] = id
			continue
		}
		if prev, mine := c.written[el]; mine {
			if el.CachedID() == prev {
				el.SetCachedID("")
			}
			delete(c.written, el)
		}
	}
}

// retractLocked clears every id the cache wrote that the caller has not
// since replaced.
func (c *Cache) retractLocked() {
	for el, id := range c.written {
		if el.CachedID() == id {
			el.SetCachedID("")
		}
	}
	c.written = make(map[Element]string)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stale reports whether the mapping is empty or older than the max age.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return true
	}
	return c.maxAge > 0 && c.now().Sub(c.loadedAt) > c.maxAge
}

// Entries returns the mapping sorted by name.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for name, id := range c.entries {
		out = append(out, Entry{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
