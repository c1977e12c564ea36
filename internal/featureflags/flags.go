package featureflags

import (
	"os"
	"strings"
)

// DangerousEmailLinking lets a Google sign-in attach to an existing user
// that owns the same email address.
const DangerousEmailLinking = "dangerous_email_linking"

// Known lists the flags the application reads.
var Known = []string{DangerousEmailLinking}

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes/on (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv(envName(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// States reports every known flag with its current value, keyed by env var.
func States() map[string]bool {
	out := make(map[string]bool, len(Known))
	for _, name := range Known {
		out[envName(name)] = Enabled(name)
	}
	return out
}

func envName(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}
