package http

import (
	"errors"
	"net/http"

	"driverdash/internal/auth"
	applog "driverdash/internal/log"
)

const (
	msgInvalidLogin  = "Invalid user ID or password!"
	msgLoginDown     = "Sign-in is temporarily unavailable. Please try again."
	msgTooManyLogins = "Too many sign-in attempts. Please wait a minute."
	formUserID       = "user_id"
	formPassword     = "password"
	formReturn       = "return"
)

func (s *Server) loginView(userID, ret, msg string) loginView {
	v := loginView{Error: msg, UserID: userID, Return: safeReturnPath(ret)}
	for _, c := range s.demoCreds {
		v.DemoCredentials = append(v.DemoCredentials, demoCredential{ID: c.ID, Secret: c.Secret})
	}
	return v
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", s.loginView("", r.URL.Query().Get(formReturn), ""))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.Warn("Parse form error", applog.FieldError, err)
		s.render(w, r, http.StatusBadRequest, "login.html", s.loginView("", "", msgInvalidLogin))
		return
	}

	id := sanitizeInput(r.PostForm.Get(formUserID))
	secret := r.PostForm.Get(formPassword)
	ret := r.PostForm.Get(formReturn)

	driver, err := s.logins.Login(r.Context(), id, secret, s.detector.ClientIP(r))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.Info("Login rejected", applog.FieldDriverID, id)
		s.render(w, r, http.StatusUnauthorized, "login.html", s.loginView(id, ret, msgInvalidLogin))
		return
	case err != nil:
		logger.Error("Login failed", applog.FieldDriverID, id, applog.FieldError, err)
		s.render(w, r, http.StatusServiceUnavailable, "login.html", s.loginView(id, ret, msgLoginDown))
		return
	}

	if _, err := s.sessions.Create(w, r, driver); err != nil {
		logger.Error("Session create failed", applog.FieldDriverID, driver.ID, applog.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, "login.html", s.loginView(id, ret, msgLoginDown))
		return
	}
	logger.Info("Driver signed in", applog.FieldDriverID, driver.ID)
	http.Redirect(w, r, safeReturnPath(ret), http.StatusSeeOther)
}

func (s *Server) handleLoginLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	s.render(w, r, http.StatusTooManyRequests, "login.html", s.loginView("", "", msgTooManyLogins))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.CurrentSession(r); ok {
		s.logins.Logout(r.Context(), sess.DriverID, s.detector.ClientIP(r))
		applog.FromContext(r.Context()).Info("Driver signed out", applog.FieldDriverID, sess.DriverID)
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		applog.FromContext(r.Context()).Warn("Session destroy failed", applog.FieldError, err)
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
