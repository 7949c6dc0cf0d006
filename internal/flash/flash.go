// Package flash implements one-time notices that survive a redirect.
//
// A notice is stored in a short-lived cookie on the response that sets it
// and consumed (read and cleared) by the next page render. Base64 keeps
// arbitrary message text cookie-safe.
package flash

import (
	"encoding/base64"
	"net/http"
)

const cookieName = "flash"

// Set stores a one-time notice for the next request.
func Set(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending notice, if any, and clears it so it is shown
// exactly once. An unreadable cookie is treated as no notice.
func Pop(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
