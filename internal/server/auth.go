package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobscout/jobscout/internal/model"
)

// IdentityKind distinguishes the two caller classes.
type IdentityKind string

const (
	// IdentityService is the privileged scheduler/automation caller.
	IdentityService IdentityKind = "service"
	// IdentityEndUser is a signed-in user acting on their own data.
	IdentityEndUser IdentityKind = "end_user"
)

// Identity is the resolved caller identity. Subject is set only for end
// users. Handlers dispatch on Kind instead of re-checking credentials.
type Identity struct {
	Kind    IdentityKind
	Subject string
}

// Authenticator resolves bearer credentials into an Identity. The static
// service token is checked first; anything else must be a valid HS256 JWT.
type Authenticator struct {
	jwtSecret    []byte
	serviceToken string
}

func NewAuthenticator(jwtSecret, serviceToken string) *Authenticator {
	return &Authenticator{jwtSecret: []byte(jwtSecret), serviceToken: serviceToken}
}

// Authenticate classifies one bearer token.
func (a *Authenticator) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, model.ErrUnauthorized
	}
	if a.serviceToken != "" && token == a.serviceToken {
		return Identity{Kind: IdentityService}, nil
	}
	if len(a.jwtSecret) == 0 {
		return Identity{}, model.ErrUnauthorized
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, model.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, model.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, model.ErrUnauthorized
	}
	return Identity{Kind: IdentityEndUser, Subject: sub}, nil
}

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the caller identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireAuth rejects requests without a resolvable identity and stores the
// identity on the request context for handlers.
func RequireAuth(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := a.Authenticate(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
