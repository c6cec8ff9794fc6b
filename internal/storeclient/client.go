package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// ErrTransport marks failures where the API could not be reached or did not
// answer. Callers may retry or fall back.
var ErrTransport = errors.New("store api unreachable")

// APIError is a non-2xx answer. Message is the server's own text and is meant
// to be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts feeds the catalog cache.
func (c *Client) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	var out []domain.ProductSummary
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/register", "", body, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/login", "", body, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (OrderReceipt, error) {
	var out OrderReceipt
	err := c.do(ctx, http.MethodPost, "/api/orders", token, req, &out)
	return out, err
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/api/my-orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("store api request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := strings.TrimSpace(eb.Message)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("store api error",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
