// Package api implements the Depot HTTP endpoints using chi.
package api

import "net/http"

// NoStore marks responses as uncacheable. Catalog and filter results belong
// to a single page load and must never be served from a cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
