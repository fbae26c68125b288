// Package session manages the signed login cookie: who is logged in, the
// per-session anti-forgery token, and flash messages.
//
// Sessions live entirely in the cookie; nothing is persisted server-side.
// The securecookie codec stamps every save, and a cookie older than the idle
// timeout fails decode, so expiry is enforced by the storage layer rather
// than by explicit checks. Any save (rendering flashes counts) re-stamps the
// cookie and extends the idle window.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/gob"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	CookieName = "cd_session"

	keyUserID    = "user_id"
	keySessionID = "sid"
	keyCSRFToken = "csrf_token"
)

// IdleTimeout is how long a session survives without activity.
const IdleTimeout = 30 * time.Minute

// Flash levels mirror the bootstrap alert classes the templates use.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

type Flash struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Manager issues and validates cookie sessions. It holds no per-request
// state; all session data travels in the request itself.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string, secureCookies bool) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secureCookies,
	}
	// MaxAge also bounds the codec's timestamp check, which is what makes
	// stale cookies fail decode.
	store.MaxAge(int(IdleTimeout.Seconds()))
	return &Manager{store: store}
}

// session returns the decoded session, or a fresh empty one when the cookie
// is missing, expired, or fails authentication. The decode error is
// deliberately ignored: all three cases mean "anonymous".
func (m *Manager) session(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, CookieName)
	return s
}

// LogIn transitions the caller to the authenticated state. All prior session
// values are discarded before the new identity is written, so a token planted
// before login never survives it. Returns the new session id, which is only
// used in log lines.
func (m *Manager) LogIn(w http.ResponseWriter, r *http.Request, userID int64) (string, error) {
	s := m.session(r)
	for k := range s.Values {
		delete(s.Values, k)
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	sid := uuid.NewString()
	s.Values[keyUserID] = userID
	s.Values[keySessionID] = sid
	s.Values[keyCSRFToken] = token
	if err := s.Save(r, w); err != nil {
		return "", err
	}
	return sid, nil
}

// LogOut drops every session value, returning the caller to the anonymous
// state. The cookie itself stays so the logout flash can still be delivered
// on the next page.
func (m *Manager) LogOut(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	for k := range s.Values {
		delete(s.Values, k)
	}
	return s.Save(r, w)
}

// UserID reports the authenticated user, or false for an anonymous caller.
func (m *Manager) UserID(r *http.Request) (int64, bool) {
	id, ok := m.session(r).Values[keyUserID].(int64)
	return id, ok
}

// SessionID returns the opaque id minted at login, or "" when anonymous.
func (m *Manager) SessionID(r *http.Request) string {
	sid, _ := m.session(r).Values[keySessionID].(string)
	return sid
}

// EnsureCSRF returns the session's anti-forgery token, minting and saving one
// if the session has none yet. Anonymous sessions get a token too: the login
// form is protected like every other form.
func (m *Manager) EnsureCSRF(w http.ResponseWriter, r *http.Request) (string, error) {
	s := m.session(r)
	if token, ok := s.Values[keyCSRFToken].(string); ok && token != "" {
		return token, nil
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.Values[keyCSRFToken] = token
	if err := s.Save(r, w); err != nil {
		return "", err
	}
	return token, nil
}

// CSRFToken returns the session's token without minting one.
func (m *Manager) CSRFToken(r *http.Request) string {
	token, _ := m.session(r).Values[keyCSRFToken].(string)
	return token
}

// ValidateCSRF compares a submitted token against the session's in constant
// time.
func (m *Manager) ValidateCSRF(r *http.Request, submitted string) bool {
	expected := m.CSRFToken(r)
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// Flash queues a one-shot message for the next rendered page.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, level, message string) {
	s := m.session(r)
	s.AddFlash(Flash{Level: level, Message: message})
	_ = s.Save(r, w)
}

// Flashes drains the queued messages. Draining mutates the session, so the
// cookie is saved again here.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) > 0 {
		_ = s.Save(r, w)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// Touch re-saves the session so an authenticated request extends the idle
// window even when nothing else writes it.
func (m *Manager) Touch(w http.ResponseWriter, r *http.Request) {
	s := m.session(r)
	if s.IsNew {
		return
	}
	_ = s.Save(r, w)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
