package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/localstore"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/storeclient"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticSource struct {
	mu    sync.Mutex
	items []domain.ProductSummary
	err   error
	calls int
}

func (s *staticSource) ListProducts(context.Context) ([]domain.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.items, s.err
}

// fakeOrders answers the n-th call with errs[n] while the queue lasts, then
// with err.
type fakeOrders struct {
	mu       sync.Mutex
	requests []storeclient.OrderRequest
	tokens   []string
	receipt  storeclient.OrderReceipt
	errs     []error
	err      error
}

func (f *fakeOrders) CreateOrder(_ context.Context, token string, req storeclient.OrderRequest) (storeclient.OrderReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.tokens = append(f.tokens, token)
	if n := len(f.requests) - 1; n < len(f.errs) {
		if f.errs[n] != nil {
			return storeclient.OrderReceipt{}, f.errs[n]
		}
		return f.receipt, nil
	}
	return f.receipt, f.err
}

type fakeSession struct {
	token   string
	user    *localstore.SessionUser
	userErr error
}

func (s fakeSession) Token(context.Context) (string, error) { return s.token, nil }

func (s fakeSession) User(context.Context) (*localstore.SessionUser, error) { return s.user, s.userErr }

type memoryLocal struct {
	orders []localstore.Order
}

func (m *memoryLocal) AppendOrder(_ context.Context, o localstore.Order) error {
	m.orders = append(m.orders, o)
	return nil
}

type harness struct {
	source *staticSource
	cache  *catalog.Cache
	orders *fakeOrders
	local  *memoryLocal
	co     *Checkout
}

func newHarness(t *testing.T, items []domain.ProductSummary, session fakeSession) *harness {
	t.Helper()
	h := &harness{
		source: &staticSource{items: items},
		orders: &fakeOrders{receipt: storeclient.OrderReceipt{OrderID: 501, Message: "Order created"}},
		local:  &memoryLocal{},
	}
	h.cache = catalog.New(h.source)
	h.cache.Initialize(context.Background())
	require.True(t, h.cache.AwaitReady(time.Second))
	h.co = New(h.cache, h.orders, session, h.local, 100*time.Millisecond, nil)
	return h
}

func validForm(name string) Form {
	return Form{
		ProductName: name,
		Quantity:    2,
		Name:        "Ann",
		Phone:       "+7 900 000 00 00",
		Address:     "Main st 1",
		Payment:     "cash",
	}
}

func TestSubmit_ResolvedButNoTokenPersistsLocally(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}}, fakeSession{})

	out, err := h.co.Submit(context.Background(), validForm("brick"))
	require.NoError(t, err)

	assert.Equal(t, TierLocal, out.Tier)
	assert.False(t, out.Confirmed)
	assert.Equal(t, "1", out.ProductID)
	assert.Contains(t, out.Message, "saved locally")

	require.Len(t, h.local.orders, 1)
	rec := h.local.orders[0]
	assert.Equal(t, "1", rec.ProductID)
	assert.Equal(t, "brick", rec.ProductName)
	assert.Equal(t, 2, rec.Quantity)
	assert.True(t, strings.HasPrefix(rec.ID, "o_"))
	assert.Nil(t, rec.UserID)
	assert.NotZero(t, rec.CreatedAtMs)
	assert.Empty(t, h.orders.requests)
}

func TestSubmit_RemoteByID(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})

	out, err := h.co.Submit(context.Background(), validForm("Cement Bag"))
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByID, out.Tier)
	assert.True(t, out.Confirmed)
	assert.Equal(t, "501", out.OrderID)
	require.Len(t, h.orders.requests, 1)
	assert.EqualValues(t, 7, h.orders.requests[0].ProductID)
	assert.Empty(t, h.orders.requests[0].ProductName)
	assert.Equal(t, "tok", h.orders.tokens[0])
	assert.Empty(t, h.local.orders)
}

func TestSubmit_RemoteByNameWhenUnresolved(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})

	out, err := h.co.Submit(context.Background(), validForm("Roof Tile"))
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByName, out.Tier)
	assert.Empty(t, out.ProductID)
	require.Len(t, h.orders.requests, 1)
	assert.Zero(t, h.orders.requests[0].ProductID)
	assert.Equal(t, "Roof Tile", h.orders.requests[0].ProductName)
}

func TestSubmit_TransportFailureFallsBackToLocal(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}},
		fakeSession{token: "tok", user: &localstore.SessionUser{ID: 9, Name: "Ann"}})
	h.orders.err = fmt.Errorf("%w: POST /api/orders: connection refused", storeclient.ErrTransport)

	out, err := h.co.Submit(context.Background(), validForm("cement bag"))
	require.NoError(t, err)

	assert.Equal(t, TierLocal, out.Tier)
	require.Len(t, h.local.orders, 1)
	require.NotNil(t, h.local.orders[0].UserID)
	assert.EqualValues(t, 9, *h.local.orders[0].UserID)
	assert.Equal(t, "7", h.local.orders[0].ProductID)
}

func TestSubmit_UnauthorizedFallsBackToLocal(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "expired"})
	h.orders.err = &storeclient.APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}

	out, err := h.co.Submit(context.Background(), validForm("cement bag"))
	require.NoError(t, err)
	assert.Equal(t, TierLocal, out.Tier)
}

func TestSubmit_RejectionIsFinalAndVerbatim(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})
	h.orders.err = &storeclient.APIError{StatusCode: http.StatusBadRequest, Message: "Bad order data"}

	_, err := h.co.Submit(context.Background(), validForm("cement bag"))

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Bad order data", rejected.Message)
	assert.Equal(t, TierRemoteByID, rejected.Tier)
	assert.Len(t, h.orders.requests, 1)
	assert.Empty(t, h.local.orders)
}

func TestSubmit_ByIDProductNotFoundRetriesByName(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}}, fakeSession{token: "tok"})
	h.orders.errs = []error{&storeclient.APIError{StatusCode: http.StatusBadRequest, Message: "Product not found"}}

	out, err := h.co.Submit(context.Background(), validForm("Brick"))
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByName, out.Tier)
	assert.True(t, out.Confirmed)
	assert.Equal(t, "501", out.OrderID)
	require.Len(t, h.orders.requests, 2)
	assert.EqualValues(t, 1, h.orders.requests[0].ProductID)
	assert.Zero(t, h.orders.requests[1].ProductID)
	assert.Equal(t, "Brick", h.orders.requests[1].ProductName)
	assert.Empty(t, h.local.orders)
}

func TestSubmit_ByIDProductNotFoundRetriesWithElementTitle(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}}, fakeSession{token: "tok"})
	h.orders.errs = []error{&storeclient.APIError{StatusCode: http.StatusBadRequest, Message: "Product not found"}}
	form := validForm("")
	form.Element = catalog.NewCard("", "", "Brick")

	out, err := h.co.Submit(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByName, out.Tier)
	require.Len(t, h.orders.requests, 2)
	assert.Equal(t, "Brick", h.orders.requests[1].ProductName)
}

func TestSubmit_ByNameRetryRejectionIsFinal(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})
	h.orders.err = &storeclient.APIError{StatusCode: http.StatusBadRequest, Message: "Product not found"}

	_, err := h.co.Submit(context.Background(), validForm("cement bag"))

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Product not found", rejected.Message)
	assert.Equal(t, TierRemoteByName, rejected.Tier)
	assert.Len(t, h.orders.requests, 2)
	assert.Empty(t, h.local.orders)
}

func TestSubmit_ProductNotFoundWithoutNameIsFinal(t *testing.T) {
	h := newHarness(t, nil, fakeSession{token: "tok"})
	h.orders.err = &storeclient.APIError{StatusCode: http.StatusBadRequest, Message: "Product not found"}
	form := validForm("")
	form.ProductID = "42"

	_, err := h.co.Submit(context.Background(), form)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, TierRemoteByID, rejected.Tier)
	assert.Len(t, h.orders.requests, 1)
}

func TestSubmit_LocalOrderKeepsElementTitle(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}}, fakeSession{})
	form := validForm("")
	form.Element = catalog.NewCard("", "", "  Gravel 20mm ")

	out, err := h.co.Submit(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, TierLocal, out.Tier)
	require.Len(t, h.local.orders, 1)
	assert.Equal(t, "Gravel 20mm", h.local.orders[0].ProductName)
	assert.Empty(t, h.local.orders[0].ProductID)
}

func TestSubmit_UnreadableSessionUserStillSavesLocally(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}},
		fakeSession{userErr: errors.New("decode session user: unexpected end of JSON input")})

	out, err := h.co.Submit(context.Background(), validForm("brick"))
	require.NoError(t, err)

	assert.Equal(t, TierLocal, out.Tier)
	require.Len(t, h.local.orders, 1)
	assert.Nil(t, h.local.orders[0].UserID)
}

func TestSubmit_ValidationNeverReachesNetwork(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})
	form := validForm("cement bag")
	form.Phone = "   "
	form.Address = ""

	_, err := h.co.Submit(context.Background(), form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"phone", "address"}, verr.Missing)
	assert.Empty(t, h.orders.requests)
	assert.Empty(t, h.local.orders)
}

func TestSubmit_DefaultsQuantityAndPayment(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 7, Name: "Cement Bag"}}, fakeSession{token: "tok"})
	form := validForm("cement bag")
	form.Quantity = 0
	form.Payment = ""

	_, err := h.co.Submit(context.Background(), form)
	require.NoError(t, err)

	require.Len(t, h.orders.requests, 1)
	assert.Equal(t, 1, h.orders.requests[0].Quantity)
	assert.Equal(t, domain.DefaultPaymentType, h.orders.requests[0].PaymentType)
}

func TestSubmit_ExplicitNumericIDSkipsLookup(t *testing.T) {
	h := newHarness(t, nil, fakeSession{token: "tok"})
	form := validForm("anything")
	form.ProductID = "42"

	out, err := h.co.Submit(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByID, out.Tier)
	assert.EqualValues(t, 42, h.orders.requests[0].ProductID)
}

func TestSubmit_RefreshesEmptyCatalogBeforeSubmit(t *testing.T) {
	h := newHarness(t, nil, fakeSession{token: "tok"})
	require.Equal(t, 0, h.cache.Len())

	h.source.mu.Lock()
	h.source.items = []domain.ProductSummary{{ID: 3, Name: "Sand"}}
	h.source.mu.Unlock()

	out, err := h.co.Submit(context.Background(), validForm("Sand"))
	require.NoError(t, err)

	assert.Equal(t, TierRemoteByID, out.Tier)
	assert.Equal(t, "3", out.ProductID)
	assert.Equal(t, 2, h.source.calls)
}

func TestSubmit_ElementCachedID(t *testing.T) {
	h := newHarness(t, []domain.ProductSummary{{ID: 1, Name: "Brick"}}, fakeSession{token: "tok"})
	form := validForm("")
	form.Element = catalog.NewCard("15", "Gravel", "Gravel 20mm")

	out, err := h.co.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "15", out.ProductID)
}
