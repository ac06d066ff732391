// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"jowam/internal/middleware"
	"jowam/internal/session"
)

// Auth groups the admin authentication handlers: password login followed
// by a mandatory TOTP second factor.
type Auth struct {
	sessions SessionStore
	users    UserStore
	issuer   string // shown in authenticator apps
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionStore, users UserStore, issuer string) *Auth {
	return &Auth{sessions: sessions, users: users, issuer: issuer}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks the password and opens a session with 2FA still pending.
// The response tells the client which second-factor step comes next.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeInput(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !checkStruct(w, &req) {
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "login is temporarily unavailable", "")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Warn("login failed", "email", req.Email, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusUnauthorized, "invalid email or password", "")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TwoFADone:   false,
	})
	if err != nil {
		internalError(w, r, "session create failed", err)
		return
	}

	next := "2fa_verify"
	if user.Needs2FASetup() {
		next = "2fa_setup"
	}
	writeJSON(w, http.StatusOK, map[string]any{"next": next, "user": user})
}

// TwoFASetup generates a TOTP secret for a user who has not enrolled yet
// and returns it with a base64 PNG QR code. Enrolled users get 409 so a
// stolen password alone cannot re-key the second factor.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		internalError(w, r, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPEnabled {
		writeError(w, http.StatusConflict, "two-factor authentication is already enabled", "")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		internalError(w, r, "totp generate failed", err)
		return
	}
	if err := a.users.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		internalError(w, r, "save totp secret failed", err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		internalError(w, r, "qr code generation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
		"qr_code":     base64.StdEncoding.EncodeToString(png),
	})
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFAVerify validates a TOTP code. The first valid code after setup
// enables TOTP on the account; every valid code completes the session.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req verifyRequest
	if !decodeInput(w, r, &req) {
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if !checkStruct(w, &req) {
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		internalError(w, r, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "two-factor setup required", "")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code", "code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
			internalError(w, r, "enable totp failed", err)
			return
		}
		user.TOTPEnabled = true
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		internalError(w, r, "session update failed", err)
		return
	}
	slog.Info("user signed in", "email", user.Email, "role", user.Role)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Me returns the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.SessionFromCtx(r.Context()))
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
