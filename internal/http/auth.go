package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/store-rating/internal/service"
)

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	sess, err := s.svc.Register(r.Context(), req)
	s.metrics.AuthAttempt("register", err == nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusCreated, "User registered successfully", toAuthResponse(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	sess, err := s.svc.Login(r.Context(), req)
	s.metrics.AuthAttempt("login", err == nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Login successful", toAuthResponse(sess))
}

func toAuthResponse(sess service.Session) authResponse {
	return authResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserResponse(sess.User),
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	user, err := s.svc.Profile(r.Context(), id.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Profile retrieved successfully", map[string]interface{}{
		"user": toUserResponse(user),
	})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePasswordInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	id, _ := identityFrom(r.Context())
	if err := s.svc.UpdatePassword(r.Context(), id.ID, req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Password updated successfully", nil)
}
