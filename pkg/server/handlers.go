package server

import (
	"encoding/json"
	"net/http"
)

// compareRequest is the body of POST /v1/compare.
type compareRequest struct {
	Comparisons []map[string]any `json:"comparisons"`
}

// handleConversation dispatches one conversation operation. The body is
// a flat JSON object whose mode field selects the operation; the result
// is always 200 with an isError field.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"isError": true,
			"error":   "Invalid JSON body.",
		})
		return
	}

	writeJSON(w, http.StatusOK, s.executor.Execute(r.Context(), args))
}

// handleCompare fans out a comparison request.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"isError": true,
			"error":   "Invalid JSON body.",
		})
		return
	}

	writeJSON(w, http.StatusOK, s.comparer.Run(r.Context(), req.Comparisons))
}

// handleProviders lists every configured provider's model catalog with
// current pricing.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isError":   false,
		"providers": s.catalogs.Catalogs(),
	})
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"isError": true,
		"error":   "Method not allowed.",
	})
}
