package handlers

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kozaktomas/face-login/internal/web/middleware"
)

const (
	// streamIdleTimeout disconnects a stream that stopped sending frames
	streamIdleTimeout = 30 * time.Second
	streamWriteWait   = 10 * time.Second
)

// CameraHandler receives webcam frames from the browser
type CameraHandler struct {
	upgrader websocket.Upgrader
}

// NewCameraHandler creates a camera handler accepting websocket upgrades
// from the allowed origins.
func NewCameraHandler(allowedOrigins []string) *CameraHandler {
	allowed := middleware.OriginSet(allowedOrigins)
	return &CameraHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
					return true
				}
				return middleware.IsOriginAllowed(origin, allowed)
			},
		},
	}
}

// FrameAck acknowledges a streamed frame
type FrameAck struct {
	Ready  bool   `json:"ready"`
	Frames uint64 `json:"frames"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Stream upgrades to a websocket; every binary message is one encoded frame.
// The camera stops being ready when the socket closes.
func (h *CameraHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "no session")
		return
	}

	// The upgrade writes its own response; carry over a cookie set for a new session.
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("Camera stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer session.Camera.Disconnect()

	conn.SetReadLimit(maxFrameBytes)

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Camera stream closed: %v", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		ack := FrameAck{}
		frame, err := session.Camera.Push(data)
		if err != nil {
			ack.Error = "invalid frame"
		} else {
			ack.Width = frame.Width
			ack.Height = frame.Height
		}
		ack.Ready = session.Camera.Ready()
		ack.Frames = session.Camera.Frames()

		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}

// Frame accepts a single encoded frame in the request body
func (h *CameraHandler) Frame(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "no session")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "frame too large")
		return
	}

	frame, err := session.Camera.Push(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid frame")
		return
	}

	respondJSON(w, http.StatusOK, FrameAck{
		Ready:  session.Camera.Ready(),
		Frames: session.Camera.Frames(),
		Width:  frame.Width,
		Height: frame.Height,
	})
}

// Disconnect marks the session's camera as gone
func (h *CameraHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "no session")
		return
	}

	session.Camera.Disconnect()
	respondJSON(w, http.StatusOK, FrameAck{Frames: session.Camera.Frames()})
}
