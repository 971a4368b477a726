// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"net/http"
)

// Health reports liveness plus whether the similarity index has been
// built. A service warming up answers 200 with index_ready=false so load
// balancers keep it in rotation while recommendations 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"index_ready":  h.svc.IndexReady(),
		"index_movies": h.svc.IndexSize(),
	}, 0)
}
