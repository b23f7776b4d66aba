package api

import (
	"net/http"
)

const version = "0.1.0"

type healthBody struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Deps    map[string]string `json:"deps"`
}

// Health reports liveness plus a best-effort ping of the database, the
// only dependency it checks; the blob store and the message broker are not
// probed. Unauthenticated, intended for load-balancer and k8s probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{}

	if err := h.store.Ping(r.Context()); err != nil {
		deps["database"] = "down"
	} else {
		deps["database"] = "up"
	}

	status := "ok"
	for _, v := range deps {
		if v != "up" {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, healthBody{Status: status, Version: version, Deps: deps})
}
