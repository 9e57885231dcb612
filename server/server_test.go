package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shanebasham/artstore/auth"
	"github.com/shanebasham/artstore/catalog"
	"github.com/shanebasham/artstore/internal/config"
	"github.com/shanebasham/artstore/kvstore/memory"
	"github.com/shanebasham/artstore/mail"
	"github.com/shanebasham/artstore/server"
	"github.com/shanebasham/artstore/token"
	"github.com/stretchr/testify/require"
)

var (
	saturday = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	monday   = time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
)

const testArtworks = `[
  {"Id":"a1","name":"Dusk Over the Bay","src":"/images/dusk.jpg","date":"2023","medium":"Oil on canvas","size":"24 x 36 in",
   "description":"Last light.","prints":{"8x10":"$45.00","16x20":"$100.00"},"original":"$1,250.00"},
  {"Id":"a2","name":"Quiet Harbor","src":"/images/harbor.jpg","date":"2021","medium":"Watercolor","size":"11 x 14 in"}
]`

const testAlerts = `[{"message":"Weekend sale!"}]`

type fakeRelay struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeRelay) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	relay     *fakeRelay
	issuer    *token.Issuer
	ephemeral *memory.Store
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	t.Setenv("ENV", "TEST")
	if os.Getenv("RATE_LIMIT") == "" {
		t.Setenv("RATE_LIMIT", "1000")
		t.Setenv("RATE_BURST", "1000")
	}

	relay := &fakeRelay{}
	issuer := token.NewIssuer(token.NewHMACSigner("test-secret"), time.Hour)
	ephemeral := memory.New()
	s, err := server.New(config.New(), server.Deps{
		Durable:   memory.New(),
		Ephemeral: ephemeral,
		Relay:     relay,
		Issuer:    issuer,
		APIUsers:  auth.APIUsers{"shanebasham": "shane1"},
		CatalogFS: fstest.MapFS{
			catalog.ArtworksPath: &fstest.MapFile{Data: []byte(testArtworks)},
			catalog.AlertsPath:   &fstest.MapFile{Data: []byte(testAlerts)},
		},
		ImagesFS: fstest.MapFS{"dusk.jpg": &fstest.MapFile{Data: []byte("jpeg")}},
		NowTime:  func() time.Time { return now },
	})
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, client: newClient(t), relay: relay, issuer: issuer, ephemeral: ephemeral}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) postJSON(t *testing.T, path, body string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Post(e.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := server.New(config.New(), server.Deps{})
	require.Error(t, err)
}

func TestGalleryAndShop(t *testing.T) {
	e := newTestEnv(t, monday)

	resp, body := e.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Dusk Over the Bay")
	require.Contains(t, body, "Quiet Harbor")
	require.NotContains(t, body, "Select a print")
	require.NotContains(t, body, "Weekend sale!")
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))

	resp, body = e.get(t, "/shop")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Select a print")
	require.Contains(t, body, "8x10 print - $45.00")
	require.Contains(t, body, "Original - $1,250.00")
	require.Contains(t, body, "Not currently for sale.")

	resp, _ = e.get(t, "/missing-page")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnonymousPagesStoreNothing(t *testing.T) {
	e := newTestEnv(t, monday)
	for range 50 {
		resp, err := http.Get(e.srv.URL + "/")
		require.NoError(t, err)
		readBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.Equal(t, 0, e.ephemeral.Len())
}

func TestWeekendAlerts(t *testing.T) {
	e := newTestEnv(t, saturday)
	_, body := e.get(t, "/")
	require.Contains(t, body, "Weekend sale!")
	require.Contains(t, body, "background: black")
}

func TestArtworkDetails(t *testing.T) {
	e := newTestEnv(t, monday)

	resp, body := e.get(t, "/artwork?art=a1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Last light.")
	require.Contains(t, body, `value="16x20"`)

	resp, body = e.get(t, "/artwork?art=nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "Artwork not found.")
}

func TestCheckoutWithoutPurchase(t *testing.T) {
	e := newTestEnv(t, monday)
	_, body := e.get(t, "/checkout")
	require.Contains(t, body, "No artwork selected")
}

func TestCheckoutSubmitWithoutPurchase(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, body := e.post(t, "/checkout", url.Values{
		"zip":        {"12345"},
		"cardNumber": {"4111111111111111"},
		"expiration": {"12/99"},
		"code":       {"123"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "/checkout", resp.Request.URL.Path)
	require.Contains(t, body, "No artwork selected")
	require.NotContains(t, body, "Thank you for your order!")
	require.NotContains(t, body, "4111111111111111")
}

func TestPurchaseAndCheckout(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		print    string
		contains []string
	}{
		{"weekday print", monday, "8x10", []string{"$45.00", "$5.00", "$3.15", "$53.15"}},
		{"weekend print", saturday, "8x10", []string{"- $9.00", "$36.00", "$2.52", "$43.52"}},
		{"weekday original", monday, "Original", []string{"$1,250.00", "$87.50", "$1,342.50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, tt.now)
			resp, body := e.post(t, "/purchase", url.Values{"art": {"a1"}, "print": {tt.print}, "return": {"/shop"}})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "/checkout", resp.Request.URL.Path)
			require.Contains(t, body, "Dusk Over the Bay")
			for _, want := range tt.contains {
				require.Contains(t, body, want)
			}
			if tt.now == monday {
				require.NotContains(t, body, "Weekend discount")
			}
		})
	}
}

func TestPurchaseWithoutPrint(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, body := e.post(t, "/purchase", url.Values{"art": {"a1"}, "print": {""}, "return": {"/shop"}})
	require.Equal(t, "/shop", resp.Request.URL.Path)
	require.Contains(t, body, "Please select a print or the original before purchasing.")
	require.Contains(t, body, `src="/js/flash.js"`, "the banner dismisses itself")

	_, body = e.get(t, "/shop")
	require.NotContains(t, body, "Please select a print or the original", "flash is shown once")

	_, body = e.get(t, "/checkout")
	require.Contains(t, body, "No artwork selected")
}

func TestCheckoutValidation(t *testing.T) {
	e := newTestEnv(t, monday)
	e.post(t, "/purchase", url.Values{"art": {"a1"}, "print": {"16x20"}})

	valid := url.Values{
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"zip":        {"12345"},
		"cardNumber": {"4111 1111 1111 1111"},
		"expiration": {"12/30"},
		"code":       {"123"},
	}
	tests := []struct {
		name    string
		field   string
		value   string
		message string
	}{
		{"zip", "zip", "1234", "Please enter a valid ZIP code."},
		{"card", "cardNumber", "4111", "Please enter a valid card number."},
		{"expiration format", "expiration", "13/30", "Please enter a valid expiration date (MM/YY)."},
		{"expired", "expiration", "05/25", "Your card is expired."},
		{"code", "code", "12", "Please enter a valid security code."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			for k, v := range valid {
				form[k] = v
			}
			form.Set(tt.field, tt.value)

			resp, body := e.post(t, "/checkout", form)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			require.Contains(t, body, tt.message)
			require.Contains(t, body, `value="Ada"`)
			require.NotContains(t, body, "4111 1111 1111 1111", "card data is never echoed")
		})
	}

	resp, body := e.post(t, "/checkout", valid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/checkout/success", resp.Request.URL.Path)
	require.Contains(t, body, "Thank you for your order!")
}

func TestLoginModalFlow(t *testing.T) {
	e := newTestEnv(t, monday)

	_, body := e.get(t, "/shop")
	require.Contains(t, body, `id="loginBtn"`)
	require.NotContains(t, body, `id="loginForm"`)

	resp, body := e.post(t, "/auth/open-login", url.Values{"return": {"/shop"}})
	require.Equal(t, "/shop", resp.Request.URL.Path)
	require.Contains(t, body, `id="loginForm"`)

	_, body = e.post(t, "/auth/show-register", url.Values{"return": {"/shop"}})
	require.Contains(t, body, `id="createAccountForm"`)

	_, body = e.post(t, "/auth/register", url.Values{
		"return":           {"/shop"},
		"registerUsername": {"ada"},
		"email":            {"ada@example.com"},
		"newPassword":      {"secret1"},
		"confirmPassword":  {"secret2"},
	})
	require.Contains(t, body, "Passwords do not match.")
	require.Contains(t, body, `id="createAccountForm"`)

	_, body = e.post(t, "/auth/register", url.Values{
		"return":           {"/shop"},
		"registerUsername": {"ada"},
		"email":            {"ada@example.com"},
		"newPassword":      {"secret1"},
		"confirmPassword":  {"secret1"},
	})
	require.Contains(t, body, "Account created! Please log in.")
	require.Contains(t, body, `value="ada@example.com"`)

	_, body = e.post(t, "/auth/login", url.Values{"return": {"/shop"}, "uname": {"ada"}, "psw": {"wrong"}})
	require.Contains(t, body, "Invalid username/email or password.")

	_, body = e.post(t, "/auth/login", url.Values{"return": {"/shop"}, "uname": {"ada@example.com"}, "psw": {"secret1"}})
	require.Contains(t, body, "Welcome, ada")
	require.NotContains(t, body, `id="loginForm"`)

	_, body = e.get(t, "/")
	require.Contains(t, body, "Welcome, ada")

	resp, body = e.post(t, "/auth/logout", url.Values{"return": {"/"}})
	require.Equal(t, "/", resp.Request.URL.Path)
	require.Contains(t, body, `id="loginBtn"`)
	require.NotContains(t, body, "Welcome, ada")
}

func TestRememberMeOutlivesTab(t *testing.T) {
	for _, remember := range []bool{true, false} {
		t.Run(map[bool]string{true: "remembered", false: "session only"}[remember], func(t *testing.T) {
			e := newTestEnv(t, monday)
			e.post(t, "/auth/open-login", nil)
			e.post(t, "/auth/show-register", nil)
			e.post(t, "/auth/register", url.Values{
				"registerUsername": {"ada"},
				"email":            {"ada@example.com"},
				"newPassword":      {"secret1"},
				"confirmPassword":  {"secret1"},
			})
			form := url.Values{"uname": {"ada"}, "psw": {"secret1"}}
			if remember {
				form.Set("remember", "1")
			}
			_, body := e.post(t, "/auth/login", form)
			require.Contains(t, body, "Welcome, ada")

			// A fresh browser session keeps only the durable cookie.
			u, err := url.Parse(e.srv.URL)
			require.NoError(t, err)
			var browserCookie *http.Cookie
			for _, c := range e.client.Jar.Cookies(u) {
				if c.Name == "artstore_browser" {
					browserCookie = c
				}
			}
			require.NotNil(t, browserCookie)

			e.client = newClient(t)
			e.client.Jar.SetCookies(u, []*http.Cookie{{Name: browserCookie.Name, Value: browserCookie.Value}})

			_, body = e.get(t, "/")
			if remember {
				require.Contains(t, body, "Welcome, ada")
			} else {
				require.NotContains(t, body, "Welcome, ada")
			}
		})
	}
}

func TestAuthEventReturnPath(t *testing.T) {
	e := newTestEnv(t, monday)
	noFollow := &http.Client{
		Jar: e.client.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	srvURL, err := url.Parse(e.srv.URL)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ret     string
		referer string
		want    string
	}{
		{"local path", "/shop", "", "/shop"},
		{"local path with query", "/artwork?art=a1", "", "/artwork?art=a1"},
		{"network path", "//evil.example/x", "", "/"},
		{"backslash network path", `/\evil.example/x`, "", "/"},
		{"escaped backslash", "/%5Cevil.example/x", "", "/"},
		{"absolute url", "https://evil.example/x", "", "/"},
		{"javascript url", "javascript:alert(1)", "", "/"},
		{"relative path", "shop", "", "/"},
		{"same host referer", "", "http://" + srvURL.Host + "/shop", "/shop"},
		{"foreign referer", "", "https://evil.example/shop", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/auth/cancel", strings.NewReader(url.Values{"return": {tt.ret}}.Encode()))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			resp, err := noFollow.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, tt.want, resp.Header.Get("Location"))
		})
	}
}

func TestUnknownAuthEvent(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.post(t, "/auth/explode", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginAPI(t *testing.T) {
	e := newTestEnv(t, monday)

	resp, body := e.postJSON(t, "/api/login", `{"username":"shanebasham"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"message":"Username and password required"}`, body)

	resp, body = e.postJSON(t, "/api/login", `{"username":"shanebasham","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"message":"Invalid username or password"}`, body)

	resp, _ = e.postJSON(t, "/api/login", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.postJSON(t, "/api/login", `{"username":"shanebasham","password":"shane1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got server.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Equal(t, "shanebasham", got.Username)

	username, err := e.issuer.Verify(got.Token)
	require.NoError(t, err)
	require.Equal(t, "shanebasham", username)
}

func TestMeAPI(t *testing.T) {
	e := newTestEnv(t, monday)

	me := func(authorization string) (*http.Response, string) {
		req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/me", nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := e.client.Do(req)
		require.NoError(t, err)
		return resp, readBody(t, resp)
	}

	resp, body := me("")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"message":"Missing Authorization header"}`, body)

	resp, _ = me("Basic abc")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := token.NewIssuer(token.NewHMACSigner("other-secret"), time.Hour).Issue("shanebasham")
	require.NoError(t, err)
	resp, body = me("Bearer " + other)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"message":"Invalid token"}`, body)

	issued, err := e.issuer.Issue("shanebasham")
	require.NoError(t, err)
	resp, body = me("Bearer " + issued)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"username":"shanebasham"}`, body)
}

func TestSendEmailAPI(t *testing.T) {
	e := newTestEnv(t, monday)

	resp, body := e.postJSON(t, "/api/send-email", `{"user_name":"Ada","user_email":"ada@example.com"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"error":"Missing required fields."}`, body)

	resp, body = e.postJSON(t, "/api/send-email", `{"user_name":"Ada","user_email":"ada@example.com","user_message":"Is Dusk available?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"success":"Email sent successfully!"}`, body)
	require.Equal(t, []mail.Message{{Name: "Ada", Email: "ada@example.com", Body: "Is Dusk available?"}}, e.relay.sent)

	e.relay.err = errors.New("smtp down")
	resp, body = e.postJSON(t, "/api/send-email", `{"user_name":"Ada","user_email":"ada@example.com","user_message":"again"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"Failed to send email."}`, body)
}

func TestCorsPreflight(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://art.example")
	e := newTestEnv(t, monday)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/login", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := e.client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := preflight("https://art.example")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://art.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")

	resp = preflight("https://evil.example")
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT", "1")
	t.Setenv("RATE_BURST", "2")
	e := newTestEnv(t, monday)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := e.postJSON(t, "/api/login", `{"username":"shanebasham","password":"shane1"}`)
		codes = append(codes, resp.StatusCode)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCatalogAndAssets(t *testing.T) {
	e := newTestEnv(t, monday)

	resp, body := e.get(t, "/json/artworks.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.JSONEq(t, testArtworks, body)

	resp, body = e.get(t, "/json/alerts.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, testAlerts, body)

	resp, _ = e.get(t, "/css/style.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	resp, body = e.get(t, "/js/flash.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "setTimeout(dismiss, 3000)")

	resp, body = e.get(t, "/images/dusk.jpg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "jpeg", body)

	resp, body = e.get(t, "/partials/header.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `id="authContainer"`)

	resp, body = e.get(t, "/partials/footer.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `id="contactForm"`)

	resp, body = e.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = e.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "artstore_http_requests_total")
}
