package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/observability/metrics"
	"github.com/aryan0dhankhar/solkant/internal/observability/tracing"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
)

// Provisioning sources, used as metric and audit labels.
const (
	SourceGoogle   = "google"
	SourceRegister = "register"
	SourceBackfill = "backfill"
)

// TenantProvisioner guarantees every user owns exactly one business.
// Uniqueness is enforced by the repository; a duplicate on create means a
// concurrent request won and its row is returned instead.
type TenantProvisioner struct {
	businesses domain.BusinessRepository
	users      domain.UserRepository
	audit      *audit.Logger
	logger     *slog.Logger
}

func NewTenantProvisioner(businesses domain.BusinessRepository, users domain.UserRepository, auditLog *audit.Logger, logger *slog.Logger) *TenantProvisioner {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &TenantProvisioner{businesses: businesses, users: users, audit: auditLog, logger: logger}
}

// EnsureBusiness runs after a provider sign-in. For Google it creates the
// user's business when missing. It always allows the sign-in: failures are
// logged, counted and audited, and the backfill job repairs them later.
func (p *TenantProvisioner) EnsureBusiness(ctx context.Context, user domain.Identity, provider string) bool {
	if provider != domain.ProviderGoogle || user.ID == "" {
		return true
	}
	if _, err := p.Provision(ctx, user, domain.DefaultBusinessName(user.Name), SourceGoogle); err != nil {
		p.logger.Error("business provisioning failed, sign-in continues",
			slog.String("user_id", user.ID),
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
	}
	return true
}

// Provision returns the user's business, creating it with name when absent.
func (p *TenantProvisioner) Provision(ctx context.Context, user domain.Identity, name, source string) (*domain.Business, error) {
	ctx, span := tracing.Tracer().Start(ctx, "tenant.Provision")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", user.ID), attribute.String("source", source))

	existing, err := p.businesses.GetByUserID(ctx, user.ID)
	if err == nil {
		metrics.ObserveBusinessProvisioning(source, "exists")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, p.fail(ctx, span, user, source, fmt.Errorf("lookup business: %w", err))
	}

	business := &domain.Business{
		UserID: user.ID,
		Name:   name,
		Email:  user.Email,
	}
	err = p.businesses.Create(ctx, business)
	switch {
	case err == nil:
		metrics.ObserveBusinessProvisioning(source, "created")
		p.audit.LogBusinessProvisioning(ctx, business.ID, user.ID, source, "created", "")
		p.logger.Info("business created",
			slog.String("business_id", business.ID),
			slog.String("user_id", user.ID),
			slog.String("source", source),
		)
		return business, nil
	case errors.Is(err, domain.ErrDuplicate):
		winner, getErr := p.businesses.GetByUserID(ctx, user.ID)
		if getErr != nil {
			return nil, p.fail(ctx, span, user, source, fmt.Errorf("reload business after conflict: %w", getErr))
		}
		metrics.ObserveBusinessProvisioning(source, "exists")
		p.logger.Debug("business created concurrently",
			slog.String("business_id", winner.ID),
			slog.String("user_id", user.ID),
		)
		return winner, nil
	default:
		return nil, p.fail(ctx, span, user, source, fmt.Errorf("create business: %w", err))
	}
}

func (p *TenantProvisioner) fail(ctx context.Context, span trace.Span, user domain.Identity, source string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "provisioning failed")
	metrics.ObserveBusinessProvisioning(source, "error")
	p.audit.LogBusinessProvisioning(ctx, "", user.ID, source, "failed", err.Error())
	return err
}

// BackfillReport summarizes a backfill run
type BackfillReport struct {
	Scanned int
	Created int
	Failed  int
}

// Backfill creates the missing business of every user that has none.
// A failure for one user does not stop the run.
func (p *TenantProvisioner) Backfill(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	users, err := p.users.ListWithoutBusiness(ctx)
	if err != nil {
		return report, fmt.Errorf("list users without business: %w", err)
	}
	report.Scanned = len(users)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := p.Provision(ctx, u.Identity(), domain.DefaultBusinessName(u.Name), SourceBackfill); err != nil {
			report.Failed++
			p.logger.Error("backfill failed for user",
				slog.String("user_id", u.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Created++
	}

	if report.Scanned > 0 {
		p.logger.Info("business backfill complete",
			slog.Int("scanned", report.Scanned),
			slog.Int("created", report.Created),
			slog.Int("failed", report.Failed),
		)
	}
	return report, nil
}
