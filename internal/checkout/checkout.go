// Package checkout submits a purchase through the store API, degrading from
// an id-keyed order to a name-keyed order to a locally persisted record when
// the catalog or the session is unusable.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/localstore"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/storeclient"
)

type Tier string

const (
	TierRemoteByID   Tier = "remote-by-id"
	TierRemoteByName Tier = "remote-by-name"
	TierLocal        Tier = "local"
)

type Resolver interface {
	Resolve(req catalog.Request) (string, bool)
	AwaitReady(timeout time.Duration) bool
	Stale() bool
	ForceRefresh(ctx context.Context) bool
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req storeclient.OrderRequest) (storeclient.OrderReceipt, error)
}

// Session is read-only here; login and logout live elsewhere.
type Session interface {
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*localstore.SessionUser, error)
}

type LocalOrders interface {
	AppendOrder(ctx context.Context, o localstore.Order) error
}

type Form struct {
	ProductID   string
	ProductName string
	Element     catalog.Element
	Quantity    int
	Name        string
	Phone       string
	Address     string
	Payment     string
}

type Outcome struct {
	Tier      Tier
	OrderID   string
	ProductID string
	// Confirmed is true only when the store accepted the order.
	Confirmed bool
	Message   string
}

// ValidationError lists the required purchase fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "fill in all required fields: " + strings.Join(e.Missing, ", ")
}

// RejectedError is a store refusal. Message is the store's own wording.
type RejectedError struct {
	Tier       Tier
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return e.Message
}

type Checkout struct {
	resolver     Resolver
	orders       OrderAPI
	session      Session
	local        LocalOrders
	readyTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func New(
	resolver Resolver,
	orders OrderAPI,
	session Session,
	local LocalOrders,
	readyTimeout time.Duration,
	logger *zap.Logger,
) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{
		resolver:     resolver,
		orders:       orders,
		session:      session,
		local:        local,
		readyTimeout: readyTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit validates the form and places the order through the first tier that
// can take it. Store rejections come back as *RejectedError and stop the
// cascade, except a by-id "Product not found" which is retried by name.
// Unreachable store or missing session fall through to the local tier.
func (c *Checkout) Submit(ctx context.Context, form Form) (Outcome, error) {
	form = normalizeForm(form)
	if err := validate(form); err != nil {
		return Outcome{}, err
	}

	productID := c.resolveProduct(ctx, form)

	token, err := c.session.Token(ctx)
	if err != nil {
		c.logger.Warn("session unreadable, ordering offline", zap.Error(err))
		token = ""
	}

	if token != "" {
		out, done, err := c.submitRemoteTiers(ctx, token, form, productID)
		if done {
			return out, err
		}
	} else {
		c.logger.Info("no session token, ordering offline")
	}

	return c.persistLocally(ctx, form, productID)
}

// submitRemoteTiers places the order by id when one resolved, and by name
// otherwise. A by-id order the store answers with "Product not found" is
// retried by name, since the local mapping can outlive the product.
func (c *Checkout) submitRemoteTiers(ctx context.Context, token string, form Form, productID string) (Outcome, bool, error) {
	base := storeclient.OrderRequest{
		Quantity:    form.Quantity,
		Address:     form.Address,
		Phone:       form.Phone,
		PaymentType: form.Payment,
	}
	name := productName(form)

	if id, err := strconv.ParseInt(productID, 10, 64); err == nil && id > 0 {
		req := base
		req.ProductID = id
		out, done, err := c.submitRemote(ctx, TierRemoteByID, token, req, productID)
		var rejected *RejectedError
		if !errors.As(err, &rejected) || !productMissing(rejected) || name == "" {
			return out, done, err
		}
		c.logger.Info("product id unknown to the store, retrying by name",
			zap.String("product_id", productID), zap.String("product_name", name))
	}

	if name == "" {
		return Outcome{}, false, nil
	}
	req := base
	req.ProductName = name
	return c.submitRemote(ctx, TierRemoteByName, token, req, "")
}

func productMissing(e *RejectedError) bool {
	return e.StatusCode == 404 || strings.EqualFold(strings.TrimSpace(e.Message), "product not found")
}

// productName is the typed name, else the listing title.
func productName(form Form) string {
	if form.ProductName != "" {
		return form.ProductName
	}
	if form.Element != nil {
		return strings.TrimSpace(form.Element.Title())
	}
	return ""
}

func (c *Checkout) resolveProduct(ctx context.Context, form Form) string {
	req := catalog.Request{
		CandidateID:   form.ProductID,
		CandidateName: form.ProductName,
		Element:       form.Element,
	}

	if !c.resolver.AwaitReady(c.readyTimeout) {
		c.logger.Debug("catalog not ready, resolving with what is cached",
			zap.Duration("waited", c.readyTimeout))
	}
	if id, ok := c.resolver.Resolve(req); ok {
		return id
	}
	if !c.resolver.Stale() {
		return ""
	}

	c.logger.Info("catalog empty or stale, refreshing before submit")
	if !c.resolver.ForceRefresh(ctx) {
		return ""
	}
	id, _ := c.resolver.Resolve(req)
	return id
}

// submitRemote reports done=false when the next tier should be tried.
func (c *Checkout) submitRemote(
	ctx context.Context,
	tier Tier,
	token string,
	req storeclient.OrderRequest,
	productID string,
) (Outcome, bool, error) {
	receipt, err := c.orders.CreateOrder(ctx, token, req)
	if err == nil {
		orderID := strconv.FormatInt(receipt.OrderID, 10)
		c.logger.Info("order placed",
			zap.String("tier", string(tier)), zap.String("order_id", orderID))
		return Outcome{
			Tier:      tier,
			OrderID:   orderID,
			ProductID: productID,
			Confirmed: true,
			Message:   "Order placed! Order number: " + orderID,
		}, true, nil
	}

	var apiErr *storeclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == 401:
		c.logger.Warn("session rejected by store, ordering offline", zap.String("tier", string(tier)))
		return Outcome{}, false, nil
	case errors.As(err, &apiErr):
		c.logger.Warn("order rejected",
			zap.String("tier", string(tier)),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		return Outcome{}, true, &RejectedError{Tier: tier, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	case errors.Is(err, storeclient.ErrTransport):
		c.logger.Warn("store unreachable, ordering offline", zap.String("tier", string(tier)), zap.Error(err))
		return Outcome{}, false, nil
	default:
		return Outcome{}, true, fmt.Errorf("submit order (%s): %w", tier, err)
	}
}

func (c *Checkout) persistLocally(ctx context.Context, form Form, productID string) (Outcome, error) {
	order := localstore.Order{
		ID:          "o_" + uuid.NewString(),
		ProductID:   productID,
		ProductName: productName(form),
		Quantity:    form.Quantity,
		Name:        form.Name,
		Phone:       form.Phone,
		Address:     form.Address,
		Payment:     form.Payment,
		CreatedAtMs: c.now().UTC().UnixMilli(),
	}
	user, err := c.session.User(ctx)
	switch {
	case err != nil:
		c.logger.Warn("session user unreadable, saving order without user", zap.Error(err))
	case user != nil:
		uid := user.ID
		order.UserID = &uid
	}

	if err := c.local.AppendOrder(ctx, order); err != nil {
		return Outcome{}, fmt.Errorf("save order locally: %w", err)
	}

	c.logger.Info("order saved locally",
		zap.String("order_id", order.ID), zap.String("product_id", productID))
	return Outcome{
		Tier:      TierLocal,
		OrderID:   order.ID,
		ProductID: productID,
		Confirmed: false,
		Message: fmt.Sprintf(
			"Order saved locally: %s. It has not been sent to the store yet.", order.ID),
	}, nil
}

func normalizeForm(f Form) Form {
	f.ProductID = strings.TrimSpace(f.ProductID)
	f.ProductName = strings.TrimSpace(f.ProductName)
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Payment = strings.TrimSpace(f.Payment)
	if f.Quantity < 1 {
		f.Quantity = 1
	}
	if f.Payment == "" {
		f.Payment = domain.DefaultPaymentType
	}
	return f
}

func validate(f Form) error {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Phone == "" {
		missing = append(missing, "phone")
	}
	if f.Address == "" {
		missing = append(missing, "address")
	}
	if f.ProductID == "" && f.ProductName == "" && f.Element == nil {
		missing = append(missing, "product")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
