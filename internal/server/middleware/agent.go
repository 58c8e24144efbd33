package middleware

import (
	"context"
	"net/http"
	"strings"

	"sysmon/internal/auth"
	"sysmon/internal/logger"
)

type agentIDKeyType int

const agentIDKey agentIDKeyType = 0

// AgentAuth verifies the bearer token on agent routes. With an empty secret
// the deployment runs open and the middleware passes everything through.
func AgentAuth(secret string, log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			agentID, err := auth.ValidateToken(parts[1], secret)
			if err != nil {
				log.Warn("agent token rejected", "error", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), agentIDKey, agentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAgentID returns the authenticated agent identity, if any.
func GetAgentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(agentIDKey).(string)
	return id, ok
}
