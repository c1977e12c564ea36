package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
)

const quoteNumberAttempts = 3

// QuoteService builds quotes from tenant-scoped clients and services
type QuoteService struct {
	quotes   domain.QuoteRepository
	clients  domain.ClientRepository
	services domain.ServiceRepository
	audit    *audit.Logger
	logger   *slog.Logger
	now      func() time.Time
}

func NewQuoteService(
	quotes domain.QuoteRepository,
	clients domain.ClientRepository,
	services domain.ServiceRepository,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *QuoteService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &QuoteService{
		quotes:   quotes,
		clients:  clients,
		services: services,
		audit:    auditLog,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *QuoteService) List(ctx context.Context, businessID string) ([]*domain.Quote, error) {
	return s.quotes.List(ctx, businessID)
}

func (s *QuoteService) Get(ctx context.Context, businessID, id string) (*domain.Quote, error) {
	return s.quotes.GetByID(ctx, businessID, id)
}

// Create resolves the client and every referenced service inside the
// caller's business, prices the lines and assigns the next yearly number.
func (s *QuoteService) Create(ctx context.Context, businessID string, in domain.QuoteInput) (*domain.Quote, error) {
	if _, err := s.clients.GetByID(ctx, businessID, in.ClientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("clientId", "Client introuvable")
		}
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "Au moins un élément requis")
	}

	items := make([]domain.QuoteItem, 0, len(in.Items))
	fields := map[string]string{}
	for i, line := range in.Items {
		item, err := s.buildItem(ctx, businessID, line)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				for k, v := range ve.Fields {
					fields[fmt.Sprintf("items.%d.%s", i, k)] = v
				}
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	q := &domain.Quote{
		BusinessID: businessID,
		ClientID:   in.ClientID,
		Status:     domain.QuoteDraft,
		ValidUntil: in.ValidUntil,
		Notes:      optional(in.Notes),
		Items:      items,
	}
	q.ComputeTotal()

	year := s.now().Year()
	count, err := s.quotes.CountForYear(ctx, businessID, year)
	if err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		q.Number = fmt.Sprintf("DEV-%d-%04d", year, count+attempt)
		err = s.quotes.Create(ctx, q)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt == quoteNumberAttempts {
			return nil, err
		}
	}

	s.logger.Info("quote created",
		slog.String("business_id", businessID),
		slog.String("quote_id", q.ID),
		slog.String("number", q.Number),
	)
	return q, nil
}

func (s *QuoteService) buildItem(ctx context.Context, businessID string, in domain.QuoteItemInput) (domain.QuoteItem, error) {
	item := domain.QuoteItem{
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
	}
	if item.Quantity <= 0 {
		return item, domain.NewValidationError("quantity", "Valeur trop petite")
	}

	if sid := optional(in.ServiceID); sid != nil {
		svc, err := s.services.GetByID(ctx, businessID, *sid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return item, domain.NewValidationError("serviceId", "Prestation introuvable")
			}
			return item, err
		}
		item.ServiceID = &svc.ID
		if item.Description == "" {
			item.Description = svc.Name
		}
		item.UnitPrice = svc.Price
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	} else if item.ServiceID == nil {
		return item, domain.NewValidationError("unitPrice", "Champ requis")
	}
	if item.Description == "" {
		return item, domain.NewValidationError("description", "Champ requis")
	}
	return item, nil
}

// UpdateStatus moves a quote along its workflow.
func (s *QuoteService) UpdateStatus(ctx context.Context, businessID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, q.Status, status)
	}
	if err := s.quotes.UpdateStatus(ctx, businessID, id, status); err != nil {
		return nil, err
	}
	q.Status = status
	return q, nil
}

func (s *QuoteService) Delete(ctx context.Context, businessID, userID, id string) error {
	if err := s.quotes.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.audit.LogDeletion(ctx, businessID, userID, "quote", id)
	return nil
}
