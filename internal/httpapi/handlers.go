package httpapi

import (
	"net/http"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/rs/zerolog"
)

type handlers struct {
	engine *adminAuth.Engine
}

// health reports the session backend round trip in milliseconds.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	latency, err := h.engine.Ping(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Dur("latency", latency).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "redisLatencyMs": latency.Milliseconds()})
}

func (h *handlers) claimed(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	claimed, err := h.engine.CheckAccountClaimed(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accountClaimed": claimed})
}

// exists answers 404 with the same body shape when no user matches.
func (h *handlers) exists(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	exists, err := h.engine.AdminUserExists(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !exists {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]bool{"adminUserExists": exists})
}

func (h *handlers) requestVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.SendVerificationCode(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.engine.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *handlers) refreshSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.engine.RefreshSession(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *handlers) setPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	userID, ok := adminAuth.SessionUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, adminAuth.ErrInvalidSession)
		return
	}
	if err := h.engine.SetPassword(r.Context(), userID, req.NewPassword, req.ConfirmNewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"passwordSet": true})
}

func (h *handlers) details(w http.ResponseWriter, r *http.Request) {
	userID, ok := adminAuth.SessionUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, adminAuth.ErrInvalidSession)
		return
	}
	details, err := h.engine.DetailsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
