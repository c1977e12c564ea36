package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/internal/validation"
)

// CatalogHandler serves /dashboard/services
type CatalogHandler struct {
	catalog   *service.CatalogService
	validator *validation.Validator
	scope     tenantScope
	logger    *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, resolver *service.TenantResolver, v *validation.Validator, development bool, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	errs := errorWriter{logger: logger, development: development}
	return &CatalogHandler{
		catalog:   catalog,
		validator: v,
		scope:     tenantScope{resolver: resolver, errs: errs},
		logger:    logger,
	}
}

// List handles GET /dashboard/services. ?active=true keeps active entries only.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	services, err := h.catalog.List(r.Context(), businessID, r.URL.Query().Get("active") == "true")
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	if services == nil {
		services = []*domain.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// Get handles GET /dashboard/services/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	svc, err := h.catalog.Get(r.Context(), businessID, r.PathValue("id"))
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Create handles POST /dashboard/services
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	svc, err := h.catalog.Create(r.Context(), businessID, in)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// Update handles PUT /dashboard/services/{id}
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	svc, err := h.catalog.Update(r.Context(), businessID, r.PathValue("id"), in)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Delete handles DELETE /dashboard/services/{id}
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.Delete(r.Context(), businessID, userID, r.PathValue("id")); err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) decode(w http.ResponseWriter, r *http.Request) (domain.ServiceInput, bool) {
	var in domain.ServiceInput
	raw, err := readBody(r)
	if err == nil {
		err = h.validator.Decode(validation.Service, raw, &in)
	}
	if err != nil {
		h.scope.errs.write(w, r, err)
		return in, false
	}
	return in, true
}
