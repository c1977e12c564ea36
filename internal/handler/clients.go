package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/internal/validation"
)

// ClientHandler serves /dashboard/clients. Every call is scoped to the
// business of the session user.
type ClientHandler struct {
	clients   *service.ClientService
	validator *validation.Validator
	scope     tenantScope
	logger    *slog.Logger
}

func NewClientHandler(clients *service.ClientService, resolver *service.TenantResolver, v *validation.Validator, development bool, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	errs := errorWriter{logger: logger, development: development}
	return &ClientHandler{
		clients:   clients,
		validator: v,
		scope:     tenantScope{resolver: resolver, errs: errs},
		logger:    logger,
	}
}

// List handles GET /dashboard/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	clients, err := h.clients.List(r.Context(), businessID)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// Get handles GET /dashboard/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), businessID, r.PathValue("id"))
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Create handles POST /dashboard/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	client, err := h.clients.Create(r.Context(), businessID, in)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// Update handles PUT /dashboard/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	client, err := h.clients.Update(r.Context(), businessID, r.PathValue("id"), in)
	if err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Delete handles DELETE /dashboard/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := h.scope.businessID(w, r)
	if !ok {
		return
	}
	if err := h.clients.Delete(r.Context(), businessID, userID, r.PathValue("id")); err != nil {
		h.scope.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) decode(w http.ResponseWriter, r *http.Request) (domain.ClientInput, bool) {
	var in domain.ClientInput
	raw, err := readBody(r)
	if err == nil {
		err = h.validator.Decode(validation.Client, raw, &in)
	}
	if err != nil {
		h.scope.errs.write(w, r, err)
		return in, false
	}
	return in, true
}
