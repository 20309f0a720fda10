package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
)

const (
	sessionCookieName = "face_login_session"
	sessionDuration   = 12 * time.Hour
	cleanupInterval   = 10 * time.Minute
)

// Session is one browser's state: its registration, its camera stream and
// whether it has logged in.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	Face      *facematch.Session
	Camera    *capture.Stream

	mu              sync.RWMutex
	authenticatedAt time.Time
}

// Authenticated reports whether the last login attempt succeeded.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.authenticatedAt.IsZero()
}

// AuthenticatedAt returns when the session logged in, or the zero time.
func (s *Session) AuthenticatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedAt
}

// SetAuthenticated marks the session as logged in or out.
func (s *Session) SetAuthenticated(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.authenticatedAt = time.Now()
	} else {
		s.authenticatedAt = time.Time{}
	}
}

// SessionManager handles session creation and validation
type SessionManager struct {
	secret      []byte
	constraints capture.Constraints
	staleAfter  time.Duration
	sessions    map[string]*Session
	mu          sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a session manager and starts expiring old sessions.
// An empty secret is replaced by a random one, so cookies do not survive a restart.
func NewSessionManager(secret string, constraints capture.Constraints, staleAfter time.Duration) *SessionManager {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("failed to generate session secret: " + err.Error())
		}
		log.Println("WEB_SESSION_SECRET not set, using a random secret for this process")
	}

	sm := &SessionManager{
		secret:      key,
		constraints: constraints,
		staleAfter:  staleAfter,
		sessions:    make(map[string]*Session),
		stop:        make(chan struct{}),
	}
	go sm.cleanupLoop()
	return sm
}

// CreateSession creates an empty session
func (sm *SessionManager) CreateSession() (*Session, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	sessionID := base64.URLEncoding.EncodeToString(idBytes)

	now := time.Now()
	session := &Session{
		ID:        sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionDuration),
		Face:      facematch.NewSession(),
		Camera:    capture.NewStream(sm.constraints, sm.staleAfter),
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		go sm.DeleteSession(sessionID)
		return nil
	}

	return session
}

// DeleteSession removes a session and disconnects its camera
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	session, ok := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if ok {
		session.Camera.Disconnect()
		session.Face.Clear()
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// SetSessionCookie sets the session cookie on the response
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, r *http.Request, session *Session) {
	signature := sm.signData(session.ID)
	cookieValue := session.ID + "." + signature

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from a signed cookie
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || !sm.verifySignature(sessionID, signature) {
		return nil
	}
	return sm.GetSession(sessionID)
}

// EnsureSession returns the request's session, creating one and setting its
// cookie when the request has none.
func (sm *SessionManager) EnsureSession(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if session := sm.GetSessionFromRequest(r); session != nil {
		return session, nil
	}

	session, err := sm.CreateSession()
	if err != nil {
		return nil, err
	}
	sm.SetSessionCookie(w, r, session)
	return session, nil
}

// Stop ends the cleanup goroutine.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stop)
	})
}

func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := sm.deleteExpired(time.Now()); n > 0 {
				log.Printf("Sessions: removed %d expired", n)
			}
		case <-sm.stop:
			return
		}
	}
}

func (sm *SessionManager) deleteExpired(now time.Time) int {
	sm.mu.RLock()
	var expired []string
	for id, s := range sm.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range expired {
		sm.DeleteSession(id)
	}
	return len(expired)
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SessionData is a helper struct for JSON responses
type SessionData struct {
	ExpiresAt     string `json:"expires_at"`
	Registered    bool   `json:"registered"`
	Authenticated bool   `json:"authenticated"`
	CameraReady   bool   `json:"camera_ready"`
}

// ToJSON returns the session data for JSON response
func (s *Session) ToJSON() SessionData {
	return SessionData{
		ExpiresAt:     s.ExpiresAt.Format(time.RFC3339),
		Registered:    s.Face.Registered(),
		Authenticated: s.Authenticated(),
		CameraReady:   s.Camera.Ready(),
	}
}

// MarshalJSON implements json.Marshaler (excludes the session ID and embedding)
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToJSON())
}
