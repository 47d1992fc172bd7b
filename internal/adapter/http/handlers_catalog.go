package adapthttp

import "net/http"

// handleSTT serves the static speech-to-text catalog. No auth: the catalog
// holds no user data.
func (s *Server) handleSTT(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Catalog())
}
