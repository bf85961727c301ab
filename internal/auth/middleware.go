package auth

import (
	"context"
	"net/http"

	"MiniPOS/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

type User struct {
	Username string
	Role     string
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// Require rejects requests without a valid bearer token and puts the
// token's user into the request context.
func Require(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, User{Username: claims.Username, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
