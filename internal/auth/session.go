package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	driverIDKey = "driver_id"
	nameKey     = "driver_name"
	tokenKey    = "session_token"

	DefaultSessionName = "driverdash-session"
)

// ErrWeakSessionKey is returned when a session key is too short for secure cookies.
var ErrWeakSessionKey = errors.New("session key must be at least 32 bytes when secure cookies are enabled")

type sessionErrorType int

const (
	sessionErrUnknown sessionErrorType = iota
	sessionErrExpired
	sessionErrTampered
	sessionErrCorrupted
	sessionErrBackend
)

// Session is the signed-in driver attached to a request.
type Session struct {
	DriverID string
	Name     string
	Token    string
}

// SessionManager stores sessions in signed cookies.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	logger *slog.Logger
}

// NewSessionManager creates a cookie session manager. An empty name uses
// DefaultSessionName.
func NewSessionManager(key []byte, name string, maxAge time.Duration, secure bool, logger *slog.Logger) (*SessionManager, error) {
	if len(key) == 0 {
		return nil, errors.New("session key is empty")
	}
	if secure && len(key) < 32 {
		return nil, ErrWeakSessionKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// Name returns the session cookie name.
func (sm *SessionManager) Name() string {
	return sm.name
}

type ctxKey struct{}

// CurrentSession returns the session loaded into the request context.
func CurrentSession(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(ctxKey{}).(*Session)
	return s, ok
}

// WithSession attaches s to the request context.
func WithSession(r *http.Request, s *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, s))
}

// LoadSession is middleware that attaches the signed-in driver, if any.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logSessionError(r, err)
		}
		if sess != nil {
			if id, _ := sess.Values[driverIDKey].(string); id != "" {
				name, _ := sess.Values[nameKey].(string)
				token, _ := sess.Values[tokenKey].(string)
				r = WithSession(r, &Session{DriverID: id, Name: name, Token: token})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a session. HTMX requests get an
// HX-Redirect, browsers a redirect to /login and API callers a plain 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		target := "/login?return=" + url.QueryEscape(r.URL.RequestURI())
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", target)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// Create starts a session for d and returns it.
func (sm *SessionManager) Create(w http.ResponseWriter, r *http.Request, d Driver) (*Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, err = sm.store.New(r, sm.name)
		if sess == nil {
			return nil, err
		}
	}

	s := &Session{DriverID: d.ID, Name: d.Name, Token: uuid.NewString()}
	sess.Values[driverIDKey] = s.DriverID
	sess.Values[nameKey] = s.Name
	sess.Values[tokenKey] = s.Token
	if err := sess.Save(r, w); err != nil {
		return nil, err
	}
	return s, nil
}

// Destroy clears the session and expires the cookie.
func (sm *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	if sess == nil {
		return nil
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	errType, category := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		sm.logger.Debug("Session expired", "category", category, "path", r.URL.Path)
	case sessionErrTampered:
		sm.logger.Warn("Session MAC validation failed",
			"category", category,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
	case sessionErrCorrupted:
		sm.logger.Info("Session decode failed", "category", category, "path", r.URL.Path)
	default:
		sm.logger.Error("Session store error", "category", category, "error", err)
	}
}

func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	var scErr securecookie.Error
	if !errors.As(err, &scErr) {
		return sessionErrBackend, "unknown"
	}
	if !scErr.IsDecode() {
		return sessionErrBackend, "backend"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return sessionErrExpired, "expired"
	case strings.Contains(msg, "mac") || strings.Contains(msg, "hash"):
		return sessionErrTampered, "mac_invalid"
	case strings.Contains(msg, "base64") || strings.Contains(msg, "decode"):
		return sessionErrCorrupted, "decode_failed"
	}
	return sessionErrCorrupted, "decode_other"
}
