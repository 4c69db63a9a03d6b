package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"masterfile/pkg/requestcontext"
)

// ActorResolver verifies a bearer token and yields the actor identity to
// record on writes. Verification covers the signature only; who the actor is
// remains the caller's claim, recorded verbatim.
type ActorResolver struct {
	key []byte
}

// NewActorResolver builds a resolver around an HMAC verification key.
func NewActorResolver(key string) *ActorResolver {
	return &ActorResolver{key: []byte(key)}
}

// Resolve extracts the subject claim from a signed token.
func (a *ActorResolver) Resolve(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.key, nil
	})
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// RequireActor rejects requests without a verifiable bearer token and places
// the actor identity into the request context.
func RequireActor(resolver *ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "request rejected - missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				writeUnauthorized(w)
				return
			}

			actor, err := resolver.Resolve(token)
			if err != nil || actor == "" {
				logger.WarnContext(ctx, "request rejected - invalid bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"a valid bearer token is required"}`))
}
