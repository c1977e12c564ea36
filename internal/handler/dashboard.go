package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/security/middleware"
	"github.com/aryan0dhankhar/solkant/internal/service"
)

// DashboardResponse summarizes the signed-in user and their business
type DashboardResponse struct {
	User     domain.SessionUser `json:"user"`
	Business BusinessSummary    `json:"business"`
}

// BusinessSummary is the public view of a business
type BusinessSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func summarizeBusiness(b *domain.Business) BusinessSummary {
	return BusinessSummary{ID: b.ID, Name: b.Name, Email: b.Email, Phone: b.Phone}
}

// DashboardHandler serves GET /dashboard
type DashboardHandler struct {
	resolver *service.TenantResolver
	errs     errorWriter
	logger   *slog.Logger
}

func NewDashboardHandler(resolver *service.TenantResolver, development bool, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		resolver: resolver,
		errs:     errorWriter{logger: logger, development: development},
		logger:   logger,
	}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	business, err := h.resolver.Business(r.Context(), session)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		User:     session.User,
		Business: summarizeBusiness(business),
	})
}
