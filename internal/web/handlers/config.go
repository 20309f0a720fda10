package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Camera        capture.Constraints `json:"camera"`
	Threshold     float64             `json:"threshold"`
	Detector      string              `json:"detector"`
	PostLoginPath string              `json:"post_login_path"`
	AuditLog      bool                `json:"audit_log"`
}

// Get returns the settings the browser needs to drive the camera
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Camera: capture.Constraints{
			FacingMode: h.config.Camera.FacingMode,
			Width:      h.config.Camera.Width,
			Height:     h.config.Camera.Height,
		},
		Threshold:     h.config.Matcher.Threshold,
		Detector:      h.config.Detector.Kind,
		PostLoginPath: h.config.Web.PostLoginPath,
		AuditLog:      h.config.Database.URL != "",
	})
}
