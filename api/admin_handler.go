package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/services"
)

const AdminCookieName = "chiaview_admin_token"

type adminHandler struct {
	responder    Responder
	logger       zerolog.Logger
	auth         *services.AdminAuth
	secureCookie bool
}

func newAdminHandler(auth *services.AdminAuth, secureCookie bool) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		auth:         auth,
		secureCookie: secureCookie,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminResponse struct {
	Success bool            `json:"success"`
	Admin   *services.Admin `json:"admin"`
}

func (h adminHandler) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionToken returns the admin cookie value, or "" when there is none.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(AdminCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// login checks the allow-list and credentials, then sets the session cookie
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} AdminResponse
// @Failure 400 {object} ErrorResponse "Missing email or password"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Not authorized"
// @Router /api/admin/login [post]
func (h adminHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := validateRequest(req, errs.NewBadRequestError("Missing email or password")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session, err := h.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.logger.Info().Str("email", req.Email).Int("status", errs.StatusCode(err)).Msg("admin login rejected")
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, h.sessionCookie(session.Token, int(services.SessionTimeout.Seconds())))
		h.responder.WriteJSON(w, AdminResponse{Success: true, Admin: &session.Admin})
	}
}

// me reports the signed-in admin, or null when the session is missing or invalid.
func (h adminHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, err := h.auth.Me(r.Context(), sessionToken(r))
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to check session", err))
			return
		}

		h.responder.WriteJSON(w, AdminResponse{Success: true, Admin: admin})
	}
}

func (h adminHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.auth.Logout(r.Context(), sessionToken(r))

		http.SetCookie(w, h.sessionCookie("", -1))
		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}
