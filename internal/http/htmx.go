package httpx

import (
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// WantsPartial returns true when the handler should return only the main fragment (not full layout).
// History restores need the full layout.
func WantsPartial(r *http.Request) bool {
	return IsHTMX(r) && !strings.EqualFold(r.Header.Get("Hx-History-Restore-Request"), "true")
}

// SetHXRedirect instructs htmx to perform a full-page navigation to url.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// SetHXLocation instructs htmx to navigate to url without a full reload.
func SetHXLocation(w http.ResponseWriter, url string) { w.Header().Set("Hx-Location", url) }

// Redirect sends the visitor to target. htmx requests get a 204 with a navigation
// header; everything else gets 303 See Other. A hard redirect discards page state.
func Redirect(w http.ResponseWriter, r *http.Request, target string, hard bool) {
	if IsHTMX(r) {
		if hard {
			SetHXRedirect(w, target)
		} else {
			SetHXLocation(w, target)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if hard {
		w.Header().Set("Cache-Control", "no-store")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
