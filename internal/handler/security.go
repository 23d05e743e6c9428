package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/storefront-go/storefront/internal/domain/user"
)

// APIKeyHeader is the request header carrying the client's API key.
const APIKeyHeader = "api_key"

type userContextKey struct{}

// HashAPIKey derives the stored lookup hash for an API key: hex-encoded
// HMAC-SHA256 under the server pepper. Seeding uses the same derivation.
func HashAPIKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// UserFromContext returns the authenticated user stored by the
// authentication middleware.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*user.User)
	return u, ok
}

func withUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// authenticate resolves the api_key header to a user. The key is never
// stored or compared in plaintext; lookup goes through its HMAC and the
// stored hash is re-compared in constant time.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			writeErrorCode(w, http.StatusUnauthorized, "missing api key")
			return
		}

		hash := HashAPIKey(h.pepper, key)
		cred, err := h.users.FindByKeyHash(r.Context(), hash)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				writeErrorCode(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			writeError(w, r, err)
			return
		}
		if subtle.ConstantTimeCompare([]byte(cred.KeyHash), []byte(hash)) != 1 {
			writeErrorCode(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		u := cred.User
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), &u)))
	})
}

// requireAdmin rejects non-admin users. Must run after authenticate.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			writeErrorCode(w, http.StatusUnauthorized, "missing api key")
			return
		}
		if !u.IsAdmin() {
			writeErrorCode(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
