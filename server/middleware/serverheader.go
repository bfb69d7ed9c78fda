package middleware

import "net/http"

// ServerHeader sets the Server response header to product.
func ServerHeader(product string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Server", product)
			next.ServeHTTP(w, r)
		})
	}
}
