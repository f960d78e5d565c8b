package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const adminSessionTTL = 6 * time.Hour

type adminSession struct {
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
}

func (s *Server) writeAdminSession(w http.ResponseWriter, r *http.Request, email string) {
	payload, _ := json.Marshal(adminSession{
		Email: email,
		Exp:   time.Now().Add(adminSessionTTL).Unix(),
	})
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write(payload)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(payload)

	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     "admin_session",
		Value:    val,
		Path:     "/",
		MaxAge:   int(adminSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) readAdminSession(r *http.Request) *adminSession {
	val := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		val = strings.TrimSpace(auth[7:])
	}
	if val == "" {
		c, err := r.Cookie("admin_session")
		if err != nil || c.Value == "" {
			return nil
		}
		val = c.Value
	}

	parts := strings.SplitN(val, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil
	}
	var sess adminSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil
	}
	if sess.Email == "" || time.Now().Unix() > sess.Exp {
		return nil
	}
	if _, ok := s.adminAllowed[sess.Email]; !ok {
		return nil
	}
	return &sess
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.readAdminSession(r) != nil {
		return true
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	return false
}
