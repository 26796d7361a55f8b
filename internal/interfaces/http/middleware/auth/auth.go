package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	tokenAuth *jwtauth.JWTAuth
	logger    *zap.Logger
}

func NewAuthMiddleware(secret []byte, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenAuth: jwtauth.New("HS256", secret, nil),
		logger:    logger,
	}
}

// Verifier parses the bearer token, if any, into the request context
func (m *AuthMiddleware) Verifier(next http.Handler) http.Handler {
	return jwtauth.Verifier(m.tokenAuth)(next)
}

// Authenticator rejects requests without a valid token and stores the
// caller's identity under domain context keys
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		subject, _ := claims["sub"].(string)
		userID, err := domain.ParseULID(subject)
		if err != nil {
			m.logger.Warn("token with malformed subject", zap.String("sub", subject))
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), domain.UserIDKey, userID)
		ctx = context.WithValue(ctx, domain.RolesKey, rolesClaim(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route group behind a role from the token claims
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := r.Context().Value(domain.RolesKey).([]string)
			if !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			for _, have := range roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// rolesClaim converts the decoded roles claim back into a string slice
func rolesClaim(claims map[string]any) []string {
	raw, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
