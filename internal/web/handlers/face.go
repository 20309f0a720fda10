package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/database"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/web/middleware"
)

// Notifications shown to the user after each action.
const (
	msgRegistered       = "You have registered successfully!"
	msgRegisterNoFace   = "No face detected. Please try again."
	msgCameraNotReady   = "Webcam not ready. Please ensure it's accessible."
	msgNotRegistered    = "No user registered. Please capture your face first."
	msgLoginSuccess     = "Login successful!"
	msgLoginNoMatch     = "Authentication failed. No match found."
	msgLoginNoFace      = "No face detected! Please try again."
	msgModelsLoading    = "Face recognition models are still loading. Please wait."
	msgDetectionTimeout = "Face detection took too long. Please try again."
	msgDetectionFailed  = "Face detection failed. Please try again."
	msgLoggedOut        = "You have been logged out."
	msgInvalidFrame     = "Could not read the camera image. Please try again."
	msgFrameTooLarge    = "The camera image is too large."
)

const (
	maxFrameBytes = 8 << 20
	auditTimeout  = 5 * time.Second
)

// FaceHandler handles the register, login and logout actions
type FaceHandler struct {
	matcher        *facematch.Matcher
	sessionManager *middleware.SessionManager
	events         database.AuthEventWriter
	postLoginPath  string
}

// NewFaceHandler creates a new face handler. events may be nil.
func NewFaceHandler(matcher *facematch.Matcher, sm *middleware.SessionManager, events database.AuthEventWriter, postLoginPath string) *FaceHandler {
	return &FaceHandler{
		matcher:        matcher,
		sessionManager: sm,
		events:         events,
		postLoginPath:  postLoginPath,
	}
}

// FaceResponse is returned by every face action
type FaceResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Error     string   `json:"error,omitempty"`
	Matched   *bool    `json:"matched,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Redirect  string   `json:"redirect,omitempty"`
}

// Register captures the current frame and stores its face as the session's user
func (h *FaceHandler) Register(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "no session")
		return
	}

	if !h.matcher.ModelsLoaded() {
		h.fail(w, r, session, database.EventRegister, facematch.ErrModelsNotLoaded)
		return
	}
	if !h.pushBodyFrame(w, r, session) {
		return
	}

	if err := h.matcher.CaptureAndRegister(r.Context(), session.Face, session.Camera); err != nil {
		h.fail(w, r, session, database.EventRegister, err)
		return
	}

	h.record(r.Context(), session, database.EventRegister, database.OutcomeSuccess, nil)
	respondJSON(w, http.StatusOK, FaceResponse{
		Success: true,
		Message: msgRegistered,
	})
}

// Login captures the current frame and compares it with the registered face
func (h *FaceHandler) Login(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "no session")
		return
	}

	// Same order as the matcher: models, then registration, then the camera.
	switch {
	case !h.matcher.ModelsLoaded():
		h.fail(w, r, session, database.EventLogin, facematch.ErrModelsNotLoaded)
		return
	case !session.Face.Registered():
		h.fail(w, r, session, database.EventLogin, facematch.ErrNotRegistered)
		return
	}
	if !h.pushBodyFrame(w, r, session) {
		return
	}

	result, err := h.matcher.CaptureAndAuthenticate(r.Context(), session.Face, session.Camera)
	if err != nil {
		h.fail(w, r, session, database.EventLogin, err)
		return
	}

	session.SetAuthenticated(result.Matched)
	distance := result.Distance
	matched := result.Matched

	if !result.Matched {
		h.record(r.Context(), session, database.EventLogin, database.OutcomeNoMatch, &distance)
		respondJSON(w, http.StatusUnauthorized, FaceResponse{
			Message:   msgLoginNoMatch,
			Error:     "no match",
			Matched:   &matched,
			Distance:  &distance,
			Threshold: result.Threshold,
		})
		return
	}

	h.record(r.Context(), session, database.EventLogin, database.OutcomeSuccess, &distance)
	respondJSON(w, http.StatusOK, FaceResponse{
		Success:   true,
		Message:   msgLoginSuccess,
		Matched:   &matched,
		Distance:  &distance,
		Threshold: result.Threshold,
		Redirect:  h.postLoginPath,
	})
}

// Logout forgets the session, including its registration
func (h *FaceHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session != nil {
		session.SetAuthenticated(false)
		h.record(r.Context(), session, database.EventLogout, database.OutcomeSuccess, nil)
		h.sessionManager.DeleteSession(session.ID)
	}
	h.sessionManager.ClearSessionCookie(w)

	respondJSON(w, http.StatusOK, FaceResponse{
		Success: true,
		Message: msgLoggedOut,
	})
}

// Me returns the logged in session
func (h *FaceHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session":          session,
		"authenticated_at": session.AuthenticatedAt().Format(time.RFC3339),
	})
}

// pushBodyFrame feeds a frame sent with the action into the session's camera.
// Requests without a body use the last streamed frame.
func (h *FaceHandler) pushBodyFrame(w http.ResponseWriter, r *http.Request, session *middleware.Session) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		respondJSON(w, http.StatusRequestEntityTooLarge, FaceResponse{
			Message: msgFrameTooLarge,
			Error:   "frame too large",
		})
		return false
	}
	if len(data) == 0 {
		return true
	}

	if _, err := session.Camera.Push(data); err != nil {
		respondJSON(w, http.StatusBadRequest, FaceResponse{
			Message: msgInvalidFrame,
			Error:   "invalid frame",
		})
		return false
	}
	return true
}

// fail records and reports a register or login error.
func (h *FaceHandler) fail(w http.ResponseWriter, r *http.Request, session *middleware.Session, kind string, err error) {
	status, code, outcome := classifyError(err)
	h.record(r.Context(), session, kind, outcome, nil)
	log.Printf("Face %s failed: %v", kind, err)

	message := loginMessage(err)
	if kind == database.EventRegister {
		message = registerMessage(err)
	}
	respondJSON(w, status, FaceResponse{
		Message: message,
		Error:   code,
	})
}

// record writes an audit event. Failures are logged and never surface to the user.
func (h *FaceHandler) record(ctx context.Context, session *middleware.Session, kind, outcome string, distance *float64) {
	if h.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	event := &database.AuthEvent{
		SessionID: auditSessionID(session.ID),
		Kind:      kind,
		Outcome:   outcome,
		Distance:  distance,
	}
	if err := h.events.Record(ctx, event); err != nil {
		log.Printf("Failed to record %s event: %s", kind, sanitizeForLog(err.Error()))
	}
}

// auditSessionID derives a stable, non-secret identifier from the session ID.
func auditSessionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

// classifyError maps a matcher error to a status code, an error code and an audit outcome.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, facematch.ErrModelsNotLoaded):
		return http.StatusServiceUnavailable, "models not loaded", database.OutcomeModelsNotLoaded
	case errors.Is(err, capture.ErrDeviceNotReady):
		return http.StatusConflict, "camera not ready", database.OutcomeCameraNotReady
	case errors.Is(err, facematch.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity, "no face detected", database.OutcomeNoFace
	case errors.Is(err, facematch.ErrNotRegistered):
		return http.StatusConflict, "no user registered", database.OutcomeNotRegistered
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "detection timed out", database.OutcomeError
	default:
		return http.StatusBadGateway, "face detection failed", database.OutcomeError
	}
}

func registerMessage(err error) string {
	if errors.Is(err, facematch.ErrNoFaceDetected) {
		return msgRegisterNoFace
	}
	return commonMessage(err)
}

func loginMessage(err error) string {
	if errors.Is(err, facematch.ErrNoFaceDetected) {
		return msgLoginNoFace
	}
	return commonMessage(err)
}

func commonMessage(err error) string {
	switch {
	case errors.Is(err, facematch.ErrModelsNotLoaded):
		return msgModelsLoading
	case errors.Is(err, capture.ErrDeviceNotReady):
		return msgCameraNotReady
	case errors.Is(err, facematch.ErrNotRegistered):
		return msgNotRegistered
	case errors.Is(err, context.DeadlineExceeded):
		return msgDetectionTimeout
	default:
		return msgDetectionFailed
	}
}
