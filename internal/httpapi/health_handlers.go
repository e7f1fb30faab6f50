package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/leonfoeck/job-matcher/internal/events"
	"github.com/leonfoeck/job-matcher/internal/store"
)

type HealthHandler struct {
	Store store.JobStore
	Hub   *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Store != nil {
		if err := h.Store.Ping(ctx); err != nil {
			WriteError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "storage: "+err.Error())
			return
		}
	}
	writeJSON(w, map[string]any{
		"ok":          true,
		"subscribers": h.Hub.Subscribers(),
	})
}
