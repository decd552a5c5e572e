package api

import (
	"encoding/json"
	"net/http"

	"forgeengine/internal/sim"
	"forgeengine/internal/simconfig"
)

// handleLoadConfig replaces the running game with one built from the
// posted configuration blob. The blob is validated in full before any
// game is constructed, so a bad request never disturbs the game already
// running.
func (h *routerHandlers) handleLoadConfig(w http.ResponseWriter, r *http.Request) {
	var blob simconfig.Blob
	if err := json.NewDecoder(r.Body).Decode(&blob); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	game, err := sim.NewGame(&blob)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.engine.Set(game)
	writeJSON(w, map[string]interface{}{"success": true})
}

// handleTick advances the running game by the requested number of frames
// (one, if unspecified) and publishes a snapshot of the result.
func (h *routerHandlers) handleTick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Frames int `json:"frames"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Frames <= 0 {
		req.Frames = 1
	}
	if req.Frames > 3600 {
		req.Frames = 3600
	}

	engine := h.engine.Get()
	if engine == nil {
		writeError(w, "no game loaded", http.StatusServiceUnavailable)
		return
	}

	for i := 0; i < req.Frames; i++ {
		engine.Step()
	}
	engine.PublishSnapshot()

	writeJSON(w, engine.LatestSnapshot())
}

// handleGetState returns the latest published snapshot.
func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	engine := h.engine.Get()
	if engine == nil {
		writeError(w, "no game loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, engine.LatestSnapshot())
}

// handleHealthz reports whether a game is currently loaded.
func (h *routerHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.engine.Get() == nil {
		status = "no_game_loaded"
	}
	writeJSON(w, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
