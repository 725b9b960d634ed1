package config

import (
	"encoding/json"
	"net/http"

	appconfig "finmodel/pkg/config"
)

// Response is the public view of the running configuration. Database
// credentials are never included.
type Response struct {
	Config        *appconfig.Config `json:"config"`
	Persisting    bool              `json:"persisting"`
	PostgresInUse bool              `json:"postgres_in_use"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config *appconfig.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *appconfig.Config) *Handler {
	return &Handler{Config: cfg}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	resp := Response{
		Config:        h.Config,
		Persisting:    len(h.Config.Output.Formats) > 0,
		PostgresInUse: h.Config.Output.HasFormat("postgres"),
	}
	json.NewEncoder(w).Encode(resp)
}
