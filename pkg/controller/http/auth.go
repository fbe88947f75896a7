package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

type userCtxKey struct{}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user stored by AuthMiddleware
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userCtxKey{}).(string)
	return user, ok && user != ""
}

// AuthMiddleware verifies an HS256 bearer token and stores its subject as the user.
// The subject is the wallet address issued by the sign-in backend.
func AuthMiddleware(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, r, goerr.New("bearer token is required", goerr.T(model.ErrTagUnauthorized)))
				return
			}

			token, err := jwt.ParseString(strings.TrimSpace(raw),
				jwt.WithKey(jwa.HS256, secret),
				jwt.WithValidate(true),
				jwt.WithAcceptableSkew(30*time.Second),
			)
			if err != nil {
				writeError(w, r, goerr.Wrap(err, "invalid bearer token", goerr.T(model.ErrTagUnauthorized)))
				return
			}

			user := strings.ToLower(strings.TrimSpace(token.Subject()))
			if user == "" {
				writeError(w, r, goerr.New("token has no subject", goerr.T(model.ErrTagUnauthorized)))
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("user", user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
