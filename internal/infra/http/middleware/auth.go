package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/donor-crm/internal/security"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

type principalKey struct{}

// AccessValidator checks a bearer access token and the session behind it.
type AccessValidator interface {
	Authenticate(ctx context.Context, token string) (*security.Principal, error)
}

// RequireAuth rejects requests without a valid bearer access token for a live
// session and stores the token's principal on the request context.
func RequireAuth(v AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}
			p, err := v.Authenticate(r.Context(), token)
			if err != nil {
				if usecase.IsTechnicalError(err) {
					writeAuthError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
					return
				}
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func WithPrincipal(ctx context.Context, p *security.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*security.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*security.Principal)
	return p, ok && p != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="donor-crm"`)
	writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token")
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
