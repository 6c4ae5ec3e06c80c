package render

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookie carries one-time messages across a redirect.
const FlashCookie = "rb_flash"

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SetFlash queues a message for the next rendered page.
func SetFlash(w http.ResponseWriter, kind, message string) {
	raw, err := json.Marshal(Flash{Type: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the queued message, if any, and expires the cookie so
// it is shown once. A malformed cookie is discarded.
func PopFlash(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return []Flash{f}
}
