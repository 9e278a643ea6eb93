package handlers

import (
	"encoding/json"
	"net/http"
)

// Routes registers every endpoint on a new ServeMux. authLimit, when not nil,
// wraps the unauthenticated /register and /login endpoints. Unmatched paths
// and methods get the same {"message": ...} body as every other error.
func (h *Handlers) Routes(authLimit func(http.Handler) http.Handler) http.Handler {
	if authLimit == nil {
		authLimit = func(next http.Handler) http.Handler { return next }
	}
	protected := func(f http.HandlerFunc) http.Handler { return h.AuthMiddleware(f) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	mux.Handle("POST /register", authLimit(http.HandlerFunc(h.Register)))
	mux.Handle("POST /login", authLimit(http.HandlerFunc(h.Login)))

	mux.Handle("GET /expenses", protected(h.ListExpenses))
	mux.Handle("POST /expenses", protected(h.CreateExpense))
	mux.Handle("GET /expenses/summary", protected(h.Statistics))
	mux.Handle("PUT /expenses/{id}", protected(h.UpdateExpense))
	mux.Handle("DELETE /expenses/{id}", protected(h.DeleteExpense))

	return jsonFallback{mux}
}

// jsonFallback rewrites the ServeMux's plain-text 404 and 405 replies as JSON.
type jsonFallback struct {
	mux *http.ServeMux
}

func (f jsonFallback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := f.mux.Handler(r); pattern == "" {
		w = &fallbackWriter{ResponseWriter: w}
	}
	f.mux.ServeHTTP(w, r)
}

var fallbackMessages = map[int]string{
	http.StatusNotFound:         "Not found",
	http.StatusMethodNotAllowed: "Method not allowed",
}

type fallbackWriter struct {
	http.ResponseWriter
	replaced bool
}

func (w *fallbackWriter) WriteHeader(status int) {
	msg, ok := fallbackMessages[status]
	if !ok {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	w.replaced = true
	w.Header().Set("Content-Type", "application/json")
	w.Header().Del("X-Content-Type-Options")
	w.ResponseWriter.WriteHeader(status)
	json.NewEncoder(w.ResponseWriter).Encode(map[string]string{"message": msg})
}

func (w *fallbackWriter) Write(b []byte) (int, error) {
	if w.replaced {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}
