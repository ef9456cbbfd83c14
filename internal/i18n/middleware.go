package i18n

import (
	"net/http"
)

// Middleware reads the Accept-Language header and injects a matching
// printer into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := MatchLanguage(r.Header.Get("Accept-Language"))
		ctx := WithPrinter(r.Context(), NewPrinter(tag))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
