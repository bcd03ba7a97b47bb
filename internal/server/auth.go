package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"
)

// AuthFilter validates the per-caller secrets: agents submitting
// snapshots present X-Client-Secret, REST readers present X-API-Key.
// An empty secret disables the corresponding check. Swagger UI under
// /docs is always reachable.
func AuthFilter(apiSecret, clientSecret string) kratoshttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/docs") {
				next.ServeHTTP(w, r)
				return
			}

			header, secret := "X-API-Key", apiSecret
			if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/v1/snapshots") {
				header, secret = "X-Client-Secret", clientSecret
			}

			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(header)
			if key == "" {
				http.Error(w, "missing "+header+" header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				http.Error(w, "invalid "+header, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
