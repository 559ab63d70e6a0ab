package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"staybook/internal/domain"
	"staybook/internal/middleware"
)

// tokenMaxAge is how long the auth cookie lives. The platform token itself
// may expire sooner; the next upstream 401 simply surfaces to the client.
const tokenMaxAge = 7 * 24 * time.Hour

// Login handles POST /login. On success the platform token is stored in an
// httpOnly cookie; the body carries only the user profile, never the token.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be JSON credentials"))
		return
	}

	res, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, map[string]domain.User{"user": res.User})
}

// registerRequest is the register body. Role picks the account kind and is
// kept off domain.Registration's JSON shape, which is what goes upstream.
type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

// Register handles POST /register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be a JSON registration"))
		return
	}

	res, err := s.auth.Register(r.Context(), domain.Registration{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Role:                 req.Role,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, map[string]domain.User{"user": res.User})
}

// Logout handles POST /logout. It only clears the cookie; the platform has
// no revocation endpoint for opaque tokens.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokenMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
