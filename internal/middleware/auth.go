package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/squadledger/internal/auth"
	"github.com/mmynk/squadledger/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the authenticated caller.
const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, member models.Member) context.Context {
	return context.WithValue(ctx, identityKey, member)
}

// Identity extracts the authenticated caller from the context.
func Identity(ctx context.Context) (models.Member, bool) {
	member, ok := ctx.Value(identityKey).(models.Member)
	return member, ok && member.ID != ""
}

// CallerID returns the authenticated caller's email, or "" if none.
func CallerID(ctx context.Context) string {
	member, _ := Identity(ctx)
	return member.ID
}

// RequireAuth returns an interceptor that validates the bearer token and
// stores the caller's identity in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithIdentity(ctx, claims.Member()), req)
		}
	}
}
