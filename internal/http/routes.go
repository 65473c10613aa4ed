package httpx

import (
	"io"
	"log/slog"
	"net/http"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Verifier     VerifierService
	OrgName      string
	CookieDomain string
	Logger       *slog.Logger // Logger for handler errors (optional)
}

// NewRouter creates and configures the HTTP router for the redemption flow.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	handlers := &VerifyHandlers{
		Svc:          services.Verifier,
		OrgName:      services.OrgName,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}

	mux.Handle("GET /start", http.HandlerFunc(handlers.Start))
	mux.Handle("GET /verify", http.HandlerFunc(handlers.Verify))
	mux.Handle("GET /redirect", http.HandlerFunc(handlers.Redirect))
	mux.Handle("GET /success", http.HandlerFunc(handlers.Success))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

// healthHandler answers liveness probes. The process either serves the
// redemption flow or it is down, so a static body is all there is to report.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}
