package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
)

// ClientService manages the clients of one business at a time.
// Every call takes the caller's business id, never one from the payload.
type ClientService struct {
	clients domain.ClientRepository
	audit   *audit.Logger
	logger  *slog.Logger
}

func NewClientService(clients domain.ClientRepository, auditLog *audit.Logger, logger *slog.Logger) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &ClientService{clients: clients, audit: auditLog, logger: logger}
}

func (s *ClientService) List(ctx context.Context, businessID string) ([]*domain.Client, error) {
	return s.clients.List(ctx, businessID)
}

func (s *ClientService) Get(ctx context.Context, businessID, id string) (*domain.Client, error) {
	return s.clients.GetByID(ctx, businessID, id)
}

func (s *ClientService) Create(ctx context.Context, businessID string, in domain.ClientInput) (*domain.Client, error) {
	c := &domain.Client{BusinessID: businessID}
	normalizeClient(&in).Apply(c)
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("client created", slog.String("business_id", businessID), slog.String("client_id", c.ID))
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, businessID, id string, in domain.ClientInput) (*domain.Client, error) {
	c := &domain.Client{ID: id, BusinessID: businessID}
	normalizeClient(&in).Apply(c)
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, businessID, userID, id string) error {
	if err := s.clients.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.audit.LogDeletion(ctx, businessID, userID, "client", id)
	return nil
}

func normalizeClient(in *domain.ClientInput) *domain.ClientInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = optional(in.Email)
	in.Phone = optional(in.Phone)
	in.Address = optional(in.Address)
	in.Notes = optional(in.Notes)
	return in
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
