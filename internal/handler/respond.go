package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/domain"
	"github.com/aryan0dhankhar/solkant/internal/security/middleware"
	"github.com/aryan0dhankhar/solkant/internal/service"
)

const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Detail      string            `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorWriter maps service errors to HTTP answers. Internal error text is
// only exposed in development.
type errorWriter struct {
	logger      *slog.Logger
	development bool
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Données invalides", FieldErrors: ve.Fields})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoTenant):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Introuvable"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Changement de statut impossible"})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Conflit"})
	case errors.Is(err, domain.ErrInUse):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Enregistrement utilisé par des devis"})
	case errors.Is(err, domain.ErrSessionRequired):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Non autorisé"})
	default:
		e.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		resp := ErrorResponse{Error: "Erreur interne du serveur"}
		if e.development {
			resp.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewValidationError("body", "JSON invalide")
	}
	return raw, nil
}

// tenantScope resolves the business of the request session.
type tenantScope struct {
	resolver *service.TenantResolver
	errs     errorWriter
}

// businessID returns the caller's business id, or writes the error answer
// and returns false. A user without business gets a 404.
func (t tenantScope) businessID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	session := middleware.SessionFromContext(r.Context())
	businessID, err := t.resolver.Resolve(r.Context(), session)
	if err != nil {
		t.errs.write(w, r, err)
		return "", "", false
	}
	return businessID, session.User.ID, true
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func decodeJSON(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewValidationError("body", "JSON invalide")
	}
	return nil
}
