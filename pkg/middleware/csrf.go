package middleware

import (
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
)

// CSRFHeader is the request header the site echoes the token in.
const CSRFHeader = "X-CSRF-Token"

// CSRF returns a handler that protects state-changing requests with a
// double-submit token. authKey must be 32 bytes. The token for a visitor is
// available from csrf.Token inside the wrapped handler.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	return csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(hosts(trustedOrigins)),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Your session expired. Please reload the page and try again."}`))
		})),
	)
}

// hosts reduces origins like "https://example.com" to the host form the
// referer check compares against.
func hosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}

// Chain wraps h with each middleware in turn; the last one runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
