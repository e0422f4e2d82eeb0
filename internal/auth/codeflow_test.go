package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testCodeFlow() *CodeFlow {
	return &CodeFlow{
		oauthConfig: &oauth2.Config{
			ClientID:     "client-1",
			ClientSecret: "secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://idp.example.com/authorize",
				TokenURL: "https://idp.example.com/token",
			},
			Scopes: []string{"openid", "profile"},
		},
	}
}

func TestAuthURL_CarriesState(t *testing.T) {
	f := testCodeFlow()

	url := f.AuthURL("state-abc")

	require.True(t, strings.HasPrefix(url, "https://idp.example.com/authorize?"))
	require.Contains(t, url, "state=state-abc")
	require.Contains(t, url, "client_id=client-1")
}

func TestLogin_RedirectsWithStateCookie(t *testing.T) {
	mux := http.NewServeMux()
	testCodeFlow().RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookieName {
			state = c.Value
			require.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, state)
	require.Contains(t, rec.Header().Get("Location"), "state="+state)
}

func TestCallback_RejectsStateMismatch(t *testing.T) {
	mux := http.NewServeMux()
	testCodeFlow().RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=evil&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "good"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallback_RejectsMissingCode(t *testing.T) {
	mux := http.NewServeMux()
	testCodeFlow().RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=good", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "good"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
