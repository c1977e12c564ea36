package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/google/uuid"
)

// MockUserRepository is an in-memory domain.UserRepository for tests.
type MockUserRepository struct {
	mu         sync.Mutex
	byID       map[string]*domain.User
	Businesses *MockBusinessRepository // consulted by ListWithoutBusiness
	CreateErr  error
	GetErr     error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{byID: map[string]*domain.User{}}
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserRepository) ListWithoutBusiness(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	users := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		cp := *u
		users = append(users, &cp)
	}
	m.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	if m.Businesses == nil {
		return users, nil
	}
	out := users[:0]
	for _, u := range users {
		if _, err := m.Businesses.GetByUserID(ctx, u.ID); err != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// MockAccountRepository is an in-memory domain.AccountRepository.
type MockAccountRepository struct {
	mu        sync.Mutex
	accounts  []*domain.Account
	CreateErr error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.accounts {
		if existing.Provider == a.Provider && existing.ProviderAccountID == a.ProviderAccountID {
			return domain.ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	cp := *a
	m.accounts = append(m.accounts, &cp)
	return nil
}

func (m *MockAccountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockBusinessRepository is an in-memory domain.BusinessRepository that
// enforces one business per user like the unique index does.
type MockBusinessRepository struct {
	mu          sync.Mutex
	byID        map[string]*domain.Business
	CreateErr   error
	GetErr      error
	CreateCalls int
	// HideOnce makes the next GetByUserID miss, simulating a concurrent
	// sign-in that created the row between the check and the insert.
	HideOnce bool
}

func NewMockBusinessRepository() *MockBusinessRepository {
	return &MockBusinessRepository{byID: map[string]*domain.Business{}}
}

func (m *MockBusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.byID {
		if existing.UserID == b.UserID {
			return domain.ErrDuplicate
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.byID[b.ID] = &cp
	return nil
}

func (m *MockBusinessRepository) GetByUserID(ctx context.Context, userID string) (*domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.HideOnce {
		m.HideOnce = false
		return nil, domain.ErrNotFound
	}
	for _, b := range m.byID {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// Count returns the number of businesses owned by userID.
func (m *MockBusinessRepository) Count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.byID {
		if b.UserID == userID {
			n++
		}
	}
	return n
}

// MockClientRepository is an in-memory tenant-scoped domain.ClientRepository.
// InUse mirrors the quotes foreign key: Delete fails with ErrInUse when it
// reports the client as referenced.
type MockClientRepository struct {
	mu    sync.Mutex
	byID  map[string]*domain.Client
	InUse func(clientID string) bool
}

func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{byID: map[string]*domain.Client{}}
}

func (m *MockClientRepository) Create(ctx context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockClientRepository) List(ctx context.Context, businessID string) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Client
	for _, c := range m.byID {
		if c.BusinessID == businessID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (m *MockClientRepository) Update(ctx context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[c.ID]
	if !ok || existing.BusinessID != c.BusinessID {
		return domain.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *MockClientRepository) Delete(ctx context.Context, businessID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.BusinessID != businessID {
		return domain.ErrNotFound
	}
	if m.InUse != nil && m.InUse(id) {
		return domain.ErrInUse
	}
	delete(m.byID, id)
	return nil
}

// MockServiceRepository is an in-memory tenant-scoped domain.ServiceRepository.
type MockServiceRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Service
}

func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{byID: map[string]*domain.Service{}}
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *MockServiceRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockServiceRepository) List(ctx context.Context, businessID string, activeOnly bool) ([]*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Service
	for _, s := range m.byID {
		if s.BusinessID != businessID || (activeOnly && !s.IsActive) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[s.ID]
	if !ok || existing.BusinessID != s.BusinessID {
		return domain.ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now()
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *MockServiceRepository) Delete(ctx context.Context, businessID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.BusinessID != businessID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// MockQuoteRepository is an in-memory tenant-scoped domain.QuoteRepository.
type MockQuoteRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Quote
}

func NewMockQuoteRepository() *MockQuoteRepository {
	return &MockQuoteRepository{byID: map[string]*domain.Quote{}}
}

// ReferencesClient reports whether any stored quote points at clientID.
func (m *MockQuoteRepository) ReferencesClient(clientID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.byID {
		if q.ClientID == clientID {
			return true
		}
	}
	return false
}

func (m *MockQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	for _, existing := range m.byID {
		if existing.BusinessID == q.BusinessID && existing.Number == q.Number {
			return domain.ErrDuplicate
		}
	}
	for i := range q.Items {
		if q.Items[i].ID == "" {
			q.Items[i].ID = uuid.NewString()
		}
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	q.UpdatedAt = q.CreatedAt
	cp := *q
	cp.Items = append([]domain.QuoteItem(nil), q.Items...)
	m.byID[q.ID] = &cp
	return nil
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok || q.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	cp := *q
	cp.Items = append([]domain.QuoteItem(nil), q.Items...)
	return &cp, nil
}

func (m *MockQuoteRepository) List(ctx context.Context, businessID string) ([]*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Quote
	for _, q := range m.byID {
		if q.BusinessID == businessID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (m *MockQuoteRepository) UpdateStatus(ctx context.Context, businessID, id string, status domain.QuoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok || q.BusinessID != businessID {
		return domain.ErrNotFound
	}
	q.Status = status
	q.UpdatedAt = time.Now()
	return nil
}

func (m *MockQuoteRepository) Delete(ctx context.Context, businessID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok || q.BusinessID != businessID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MockQuoteRepository) CountForYear(ctx context.Context, businessID string, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.byID {
		if q.BusinessID == businessID && q.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}
