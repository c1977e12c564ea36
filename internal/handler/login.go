package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/solkant/internal/security/auth"
	"github.com/aryan0dhankhar/solkant/internal/security/middleware"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Connexion - Solkant</title>
</head>
<body>
<main>
<h1>Connexion</h1>
{{if .Code}}<div role="alert" class="error">
<p>{{.Message}}</p>
<p>Code: {{.Code}}</p>
</div>{{end}}
<form method="post" action="/api/auth/callback/credentials">
<label>Email <input type="email" name="email" autocomplete="email" required></label>
<label>Mot de passe <input type="password" name="password" autocomplete="current-password" required></label>
<button type="submit">Se connecter</button>
</form>
{{if .Google}}<a class="google" href="/api/auth/signin/google">Continuer avec Google</a>{{end}}
</main>
</body>
</html>
`))

type loginPage struct {
	Code    string
	Message string
	Google  bool
}

// LoginHandler renders the login page and its error banner
type LoginHandler struct {
	googleEnabled bool
	logger        *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(googleEnabled bool, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginHandler{googleEnabled: googleEnabled, logger: logger}
}

// ServeHTTP handles GET /login. Signed-in users go straight to the dashboard.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s := middleware.SessionFromContext(r.Context()); s != nil {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return
	}

	page := loginPage{Google: h.googleEnabled}
	if code := r.URL.Query().Get("error"); code != "" {
		page.Code = code
		page.Message = auth.MessageFor(code)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := loginTemplate.Execute(w, page); err != nil {
		h.logger.Error("failed to render login page", slog.String("error", err.Error()))
	}
}
