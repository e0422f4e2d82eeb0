package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/simpliv/notepads/internal/obs"
)

const stateCookieName = "oauth_state"

// RegisterRoutes registers the unauthenticated login endpoints for the
// authorization-code flow. These must be mounted outside RequireAuth.
func (f *CodeFlow) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", f.handleLogin)
	mux.HandleFunc("GET /auth/callback", f.handleCallback)
}

func (f *CodeFlow) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, f.AuthURL(state), http.StatusFound)
}

func (f *CodeFlow) handleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	verified, err := f.Exchange(r.Context(), code)
	if err != nil {
		obs.From(r.Context()).Warn("code_exchange_failed", "error", err.Error())
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	// The client presents the token as "Authorization: Bearer <token>" on
	// subsequent API calls.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token": verified.Raw,
		"name":  verified.Identity.Name,
		"photo": verified.Identity.PhotoURL,
	})
}

func randomState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
