package handlers

import "net/http"

// Statistics returns per-category spending totals for the current user.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.expenses.Summarize(r.Context(), GetUsernameFromContext(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
