// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"propal/internal/domain"
)

type profileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

func publicProfile(u *domain.User) profileResponse {
	return profileResponse{Username: u.Username, Email: u.Email, Phone: u.Phone}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.auth.Signup(r.Context(), body.Username, body.Email, body.Password, body.Phone); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tok, user, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.setSessionCookie(w, r, tok)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": tok,
		"user":  publicProfile(user),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		NewEmail    string `json:"newEmail"`
		NewPassword string `json:"newPassword"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := userIDFromContext(r.Context())
	if err := s.auth.UpdateProfile(r.Context(), userID, body.NewEmail, body.NewPassword); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully"})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.cookieTTL.Seconds()),
	})
}
