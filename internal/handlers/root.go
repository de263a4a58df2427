package handlers

import "net/http"

// APIRoot maps each registered resource to its absolute URL.
func APIRoot(prefix string, resources ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base := scheme + "://" + r.Host + prefix + "/"
		out := make(map[string]string, len(resources))
		for _, name := range resources {
			out[name] = base + name + "/"
		}
		writeJSON(w, http.StatusOK, out)
	}
}
