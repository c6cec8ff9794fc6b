package application

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*domain.User{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if catalog.NormalizeName(u.Email) == catalog.NormalizeName(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) Insert(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type memProducts struct {
	mu    sync.Mutex
	items []domain.Product
}

func (m *memProducts) List(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Product(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProducts) FindByName(_ context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *domain.Product
	for i := range m.items {
		if catalog.NormalizeName(m.items[i].Name) == name && (found == nil || m.items[i].ID > found.ID) {
			cp := m.items[i]
			found = &cp
		}
	}
	return found, nil
}

func (m *memProducts) UpsertBySku(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].Sku == p.Sku {
			p.ID = m.items[i].ID
			m.items[i] = *p
			return nil
		}
	}
	p.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *p)
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	items  []domain.Order
	failOn error
}

func (m *memOrders) Insert(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return m.failOn
	}
	o.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *o)
	return nil
}

func (m *memOrders) GetByPublicID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].PublicID == id {
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID int64) ([]domain.OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OrderView
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, domain.OrderView{Order: m.items[i]})
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == o.ID {
			m.items[i] = *o
			return nil
		}
	}
	return errors.New("order not found")
}

func (m *memOrders) get(i int) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[i]
}

type memOutbox struct {
	mu   sync.Mutex
	msgs []domain.OutboxMessage
	err  error
}

func (m *memOutbox) Insert(_ context.Context, msg domain.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memOutbox) GetPendingBatch(_ context.Context, maxRetry, batchSize int) ([]domain.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OutboxMessage
	for _, msg := range m.msgs {
		if msg.ProcessedAtUtc == nil && msg.RetryCount < maxRetry && len(out) < batchSize {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memOutbox) Save(_ context.Context, msg domain.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.msgs {
		if m.msgs[i].ID == msg.ID {
			m.msgs[i] = msg
			return nil
		}
	}
	return errors.New("message not found")
}

// plainHasher keeps tests fast; bcrypt has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "h:"+p {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type stubTokens struct{}

func (stubTokens) Issue(p domain.Principal) (string, error) {
	return "token-for-" + p.Email, nil
}

func (stubTokens) Verify(string) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrUnauthorized
}
