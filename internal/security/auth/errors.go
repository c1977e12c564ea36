package auth

import (
	"errors"
	"net/url"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

// ErrorCode is the opaque value carried in /login?error=.
type ErrorCode string

const (
	ErrorConfiguration         ErrorCode = "Configuration"
	ErrorAccessDenied          ErrorCode = "AccessDenied"
	ErrorVerification          ErrorCode = "Verification"
	ErrorOAuthSignin           ErrorCode = "OAuthSignin"
	ErrorOAuthCallback         ErrorCode = "OAuthCallback"
	ErrorOAuthCreateAccount    ErrorCode = "OAuthCreateAccount"
	ErrorEmailCreateAccount    ErrorCode = "EmailCreateAccount"
	ErrorCallback              ErrorCode = "Callback"
	ErrorOAuthAccountNotLinked ErrorCode = "OAuthAccountNotLinked"
	ErrorEmailSignin           ErrorCode = "EmailSignin"
	ErrorCredentialsSignin     ErrorCode = "CredentialsSignin"
	ErrorSessionRequired       ErrorCode = "SessionRequired"
	ErrorDefault               ErrorCode = "Default"
)

var errorMessages = map[ErrorCode]string{
	ErrorConfiguration:         "Erreur de configuration OAuth",
	ErrorAccessDenied:          "Accès refusé",
	ErrorVerification:          "Erreur de vérification",
	ErrorOAuthSignin:           "Erreur lors de la connexion OAuth",
	ErrorOAuthCallback:         "Erreur de callback OAuth",
	ErrorOAuthCreateAccount:    "Erreur lors de la création du compte",
	ErrorEmailCreateAccount:    "Erreur lors de la création du compte email",
	ErrorCallback:              "Erreur de callback",
	ErrorOAuthAccountNotLinked: "Ce compte OAuth est déjà lié à un autre utilisateur",
	ErrorEmailSignin:           "Erreur d'envoi de l'email de connexion",
	ErrorCredentialsSignin:     "Email ou mot de passe invalide",
	ErrorSessionRequired:       "Session requise",
	ErrorDefault:               "Une erreur est survenue lors de la connexion",
}

// MessageFor returns the user-facing message for a code. Unknown codes get
// the Default message.
func MessageFor(code string) string {
	if msg, ok := errorMessages[ErrorCode(code)]; ok {
		return msg
	}
	return errorMessages[ErrorDefault]
}

// CodeFor maps a sign-in error to its opaque code.
func CodeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrCredentialsRequired):
		return ErrorCredentialsSignin
	case errors.Is(err, domain.ErrConfiguration):
		return ErrorConfiguration
	case errors.Is(err, domain.ErrAccessDenied):
		return ErrorAccessDenied
	case errors.Is(err, domain.ErrOAuthAccountNotLinked):
		return ErrorOAuthAccountNotLinked
	case errors.Is(err, domain.ErrOAuthCreateAccount):
		return ErrorOAuthCreateAccount
	case errors.Is(err, domain.ErrSessionRequired):
		return ErrorSessionRequired
	default:
		return ErrorDefault
	}
}

// LoginURL is the login entry point carrying code.
func LoginURL(code ErrorCode) string {
	if code == "" {
		return "/login"
	}
	return "/login?error=" + url.QueryEscape(string(code))
}
