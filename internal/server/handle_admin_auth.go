package server

import (
	"errors"
	"net/http"

	"github.com/playperu/eastertrail/internal/adminauth"
)

// AdminLoginRequest is the request body for POST /api/admin-auth.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	OK bool `json:"ok"`
}

// AdminStatusResponse is the response for GET /api/admin-auth.
type AdminStatusResponse struct {
	OK         bool `json:"ok"`
	Configured bool `json:"configured"`
}

func handleAdminLogin(gate *adminauth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Bad request")
			return
		}

		err := gate.Login(w, req.Password)
		switch {
		case errors.Is(err, adminauth.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "Admin login not configured. Set ADMIN_PASSWORD to enable.")
		case errors.Is(err, adminauth.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Invalid password")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, AdminLoginResponse{OK: true})
		}
	}
}

func handleAdminStatus(gate *adminauth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !gate.Auth.Enabled() {
			writeJSON(w, http.StatusOK, AdminStatusResponse{})
			return
		}
		writeJSON(w, http.StatusOK, AdminStatusResponse{OK: gate.Allowed(r), Configured: true})
	}
}

func handleAdminLogout(gate *adminauth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate.Logout(w)
		writeJSON(w, http.StatusOK, AdminLoginResponse{OK: true})
	}
}
