package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/internal/validation"
)

// QuoteHandler serves /dashboard/devis
type QuoteHandler struct {
	quotes    *service.QuoteService
	validator *validation.Validator
	scope     tenantScope
	logger    *slog.Logger
}

func NewQuoteHandler(quotes *service.QuoteService, resolver *service.TenantResolver, v *validation.Validator, development bool, logger *slog.Logger) *QuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	errs := errorWriter{logger: logger, development: development}
	return &QuoteHandler{
		quotes:    quotes,
		validator: v,
		scope:     tenantScope{resolver: resolver, errs: errs},
		logger:    logger,
	}
}

// List handles GET /dashboard/devis
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	quotes, err := h.quotes.List(r.Context(), businessID)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	if quotes == nil {
		quotes = []*domain.Quote{}
	}
	writeJSON(w, http.StatusOK, quotes)
}

// Get handles GET /dashboard/devis/{id}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), businessID, r.PathValue("id"))
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Create handles POST /dashboard/devis
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	var in domain.QuoteInput
	raw, err := readBody(r)
	if err == nil {
		err = h.validator.Decode(validation.Quote, raw, &in)
	}
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	q, err := h.quotes.Create(r.Context(), businessID, in)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// StatusRequest is the body of PUT /dashboard/devis/{id}/status
type StatusRequest struct {
	Status domain.QuoteStatus `json:"status"`
}

// UpdateStatus handles PUT /dashboard/devis/{id}/status
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	raw, err := readBody(r)
	if err == nil {
		err = h.validator.Decode(validation.QuoteStatus, raw, &req)
	}
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	q, err := h.quotes.UpdateStatus(r.Context(), businessID, r.PathValue("id"), req.Status)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Delete handles DELETE /dashboard/devis/{id}
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	if err := h.quotes.Delete(r.Context(), businessID, userID, r.PathValue("id")); err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
