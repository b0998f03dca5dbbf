package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	// The overview recomputes four reports at once; keep it behind a
	// tighter per-client limit than the individual endpoints.
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/financial", h.handleFinancial)
	r.Get("/customers", h.handleCustomers)
	r.Get("/inventory", h.handleInventory)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/overview", h.handleOverview)
	})
}
