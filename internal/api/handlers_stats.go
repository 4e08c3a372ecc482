package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/bookgest/internal/pipeline"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stages := map[string]pipeline.StatsSnapshot{}
	if s.deps.Stats != nil {
		stages = s.deps.Stats.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.deps.Orchestrator.QueueDepth(),
		"stages":      stages,
	})
}
