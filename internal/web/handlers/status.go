package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-login/internal/models"
	"github.com/kozaktomas/face-login/internal/web/middleware"
)

// ModelStatus reports the model loader state
type ModelStatus interface {
	Status() models.Status
}

// StatusHandler reports what the current session can do
type StatusHandler struct {
	models ModelStatus
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(m ModelStatus) *StatusHandler {
	return &StatusHandler{models: m}
}

// StatusResponse represents the status response
type StatusResponse struct {
	ModelsLoaded  bool          `json:"models_loaded"`
	Models        models.Status `json:"models"`
	CameraReady   bool          `json:"camera_ready"`
	Registered    bool          `json:"registered"`
	Authenticated bool          `json:"authenticated"`
}

// Get returns the model, camera and registration state
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	st := h.models.Status()
	resp := StatusResponse{
		ModelsLoaded: st.State == models.StateLoaded,
		Models:       st,
	}

	if session := middleware.GetSessionFromContext(r.Context()); session != nil {
		resp.CameraReady = session.Camera.Ready()
		resp.Registered = session.Face.Registered()
		resp.Authenticated = session.Authenticated()
	}

	respondJSON(w, http.StatusOK, resp)
}
