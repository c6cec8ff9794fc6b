package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (application.AuthResult, error)
	Login(ctx context.Context, email, password string) (application.AuthResult, error)
	Authenticate(token string) (domain.Principal, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, caller domain.Principal, in application.PlaceOrderInput) (*domain.Order, error)
	ListMine(ctx context.Context, caller domain.Principal) ([]domain.OrderView, error)
}

// Server groups the dependencies of the HTTP layer.
type Server struct {
	cfg      config.Config
	auth     AuthService
	orders   OrderService
	products domain.ProductRepository
	logger   *zap.Logger
}

func NewServer(
	cfg config.Config,
	auth AuthService,
	orders OrderService,
	products domain.ProductRepository,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		auth:     auth,
		orders:   orders,
		products: products,
		logger:   logger.Named("http"),
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/swagger.json", s.handleSwaggerJson)
	mux.HandleFunc("/api/register", s.handleRegister)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/products", s.handleListProducts)
	mux.HandleFunc("/api/products/", s.handleGetProduct)
	mux.HandleFunc("/api/orders", s.requireAuth(s.handleCreateOrder))
	mux.HandleFunc("/api/my-orders", s.requireAuth(s.handleMyOrders))
}

// Handler wraps the routes with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(s.cors(mux))
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type productResponse struct {
	ID          int64     `json:"id"`
	Sku         string    `json:"sku,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type orderRequest struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	PaymentType string `json:"payment_type"`
}

type orderCreatedResponse struct {
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

type myOrderResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName *string   `json:"product_name"`
	Price       *float64  `json:"price"`
	Quantity    int       `json:"quantity"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	PaymentType string    `json:"payment_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// POST /api/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := s.auth.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// GET /api/products
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	products, err := s.products.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/products/{id}
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/products/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || strings.Contains(raw, "/") || err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
		return
	}

	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if product == nil {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// POST /api/orders
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body orderRequest
	if !decodeBody(w, r, &body) {
		return
	}

	order, err := s.orders.PlaceOrder(r.Context(), caller, application.PlaceOrderInput{
		ProductID:   body.ProductID,
		ProductName: body.ProductName,
		Quantity:    body.Quantity,
		Address:     body.Address,
		Phone:       body.Phone,
		PaymentType: body.PaymentType,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderCreatedResponse{OrderID: order.ID, Message: "Order created"})
}

// GET /api/my-orders
func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	orders, err := s.orders.ListMine(r.Context(), caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := make([]myOrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, myOrderResponse{
			ID:          o.ID,
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			Price:       o.Price,
			Quantity:    o.Quantity,
			Address:     o.Address,
			Phone:       o.Phone,
			PaymentType: o.PaymentType,
			Status:      string(o.Status),
			CreatedAt:   o.CreatedAtUtc,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /swagger.json
func (s *Server) handleSwaggerJson(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(openAPISpec))
}

func toAuthResponse(res application.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		User: userResponse{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
		},
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Sku:         p.Sku,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAtUtc,
	}
}

// writeError maps domain errors to the status and message clients show.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "Server error"
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		status, msg = http.StatusBadRequest, "Fill all fields"
	case errors.Is(err, domain.ErrPasswordTooShort):
		status, msg = http.StatusBadRequest, "Password must be at least 6 characters"
	case errors.Is(err, domain.ErrEmailTaken):
		status, msg = http.StatusBadRequest, "Email already exists"
	case errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusBadRequest, "User not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, msg = http.StatusBadRequest, "Wrong password"
	case errors.Is(err, domain.ErrBadOrder):
		status, msg = http.StatusBadRequest, "Bad order data"
	case errors.Is(err, domain.ErrProductNotFound):
		status, msg = http.StatusBadRequest, "Product not found"
	case errors.Is(err, domain.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "Unauthorized"
	default:
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, messageResponse{Message: msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
