package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
)

// CatalogService manages the services a business offers
type CatalogService struct {
	services domain.ServiceRepository
	audit    *audit.Logger
	logger   *slog.Logger
}

func NewCatalogService(services domain.ServiceRepository, auditLog *audit.Logger, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &CatalogService{services: services, audit: auditLog, logger: logger}
}

func (s *CatalogService) List(ctx context.Context, businessID string, activeOnly bool) ([]*domain.Service, error) {
	return s.services.List(ctx, businessID, activeOnly)
}

func (s *CatalogService) Get(ctx context.Context, businessID, id string) (*domain.Service, error) {
	return s.services.GetByID(ctx, businessID, id)
}

func (s *CatalogService) Create(ctx context.Context, businessID string, in domain.ServiceInput) (*domain.Service, error) {
	if err := checkService(&in); err != nil {
		return nil, err
	}
	svc := &domain.Service{BusinessID: businessID}
	in.Apply(svc)
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("service created", slog.String("business_id", businessID), slog.String("service_id", svc.ID))
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, businessID, id string, in domain.ServiceInput) (*domain.Service, error) {
	if err := checkService(&in); err != nil {
		return nil, err
	}
	svc := &domain.Service{ID: id, BusinessID: businessID}
	in.Apply(svc)
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, businessID, userID, id string) error {
	if err := s.services.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.audit.LogDeletion(ctx, businessID, userID, "service", id)
	return nil
}

// checkService normalizes the input and enforces the bounds the schema
// cannot express for callers that skip it (CLI, tests).
func checkService(in *domain.ServiceInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = optional(in.Description)
	in.Category = optional(in.Category)

	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "Champ requis"
	}
	if in.Price < 0 {
		fields["price"] = "Valeur trop petite"
	} else if in.Price > domain.MaxServicePrice {
		fields["price"] = "Valeur trop grande"
	}
	if in.Duration != nil && *in.Duration <= 0 {
		fields["duration"] = "Valeur trop petite"
	}
	if in.Category != nil && !validCategory(*in.Category) {
		fields["category"] = "Valeur non autorisée"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validCategory(c string) bool {
	for _, known := range domain.ServiceCategories {
		if c == known {
			return true
		}
	}
	return false
}
