package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"user-auth-server/internal/auth"
	"user-auth-server/internal/authflow"
	"user-auth-server/internal/config"
	"user-auth-server/internal/rbac"
	"user-auth-server/internal/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type capturingSender struct {
	urls []string
}

func (s *capturingSender) Send(_ context.Context, _, confirmURL string) error {
	s.urls = append(s.urls, confirmURL)
	return nil
}

type testAPI struct {
	router *gin.Engine
	sender *capturingSender
	store  *users.MemoryStore
}

// newTestAPI wires the full middleware chain the way cmd/api does, over
// in-memory stores.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 3 * time.Hour,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	store := users.NewMemoryStore()
	tokens := users.NewMemoryTokenStore()
	sender := &capturingSender{}

	flow := authflow.NewService(
		store, tokens, codec, hasher, sender,
		"http://localhost/auth/email-confirm?userId={userId}&token={token}",
		nil, nil,
	)
	h := Handlers{Flow: flow, Users: users.NewService(store, hasher)}

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/email-send-confirmation", h.SendEmailConfirmation)
	r.GET("/auth/email-confirm", h.ConfirmEmail)

	r.POST("/users", h.RegisterUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)

	protected := r.Group("/users")
	protected.Use(auth.Authenticate(codec), auth.InjectRoles(store), rbac.RequireAnyRole(rbac.RoleUser))
	protected.PUT("/:id", h.UpdateUser)
	protected.DELETE("/:id", h.DeleteUser)

	return &testAPI{router: r, sender: sender, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// confirmToken pulls userId/token out of the last captured confirmation URL.
func (a *testAPI) confirmToken(t *testing.T) (string, string) {
	t.Helper()
	if len(a.sender.urls) == 0 {
		t.Fatalf("no confirmation mail captured")
	}
	u, err := url.Parse(a.sender.urls[len(a.sender.urls)-1])
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u.Query().Get("userId"), u.Query().Get("token")
}

func TestFullCredentialLifecycle(t *testing.T) {
	a := newTestAPI(t)

	// Register.
	w := a.do(t, http.MethodPost, "/users", "", gin.H{
		"username": "alice", "name": "Alice", "email": "alice@example.com", "password": "password1",
	})
	if w.Code != 201 {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	userID := decode(t, w)["id"].(string)

	// Login blocked until email is confirmed.
	w = a.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "password1"})
	if w.Code != 422 {
		t.Fatalf("unconfirmed login: expected 422, got %d", w.Code)
	}

	// Request + perform email confirmation.
	w = a.do(t, http.MethodPost, "/auth/email-send-confirmation", "", gin.H{"email": "alice@example.com"})
	if w.Code != 204 {
		t.Fatalf("send confirmation: expected 204, got %d", w.Code)
	}
	uid, token := a.confirmToken(t)
	if uid != userID {
		t.Fatalf("confirm url user mismatch: %s != %s", uid, userID)
	}
	w = a.do(t, http.MethodGet, "/auth/email-confirm?userId="+uid+"&token="+token, "", nil)
	if w.Code != 200 {
		t.Fatalf("confirm: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// Confirming again fails.
	w = a.do(t, http.MethodGet, "/auth/email-confirm?userId="+uid+"&token="+token, "", nil)
	if w.Code != 400 {
		t.Fatalf("second confirm: expected 400, got %d", w.Code)
	}

	// Login now yields a refresh token.
	w = a.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "password1"})
	if w.Code != 200 {
		t.Fatalf("login: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	refreshToken := decode(t, w)["token"].(string)

	// A refresh token carries no role claims: protected routes reject it.
	w = a.do(t, http.MethodPut, "/users/"+userID, refreshToken, gin.H{"name": "x", "current_password": "password1"})
	if w.Code != 401 {
		t.Fatalf("refresh token on protected route: expected 401, got %d", w.Code)
	}

	// Exchange refresh for access; roles come back as metadata.
	w = a.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"token": refreshToken})
	if w.Code != 200 {
		t.Fatalf("refresh: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	body := decode(t, w)
	accessToken := body["token"].(string)
	roles := body["roles"].([]any)
	if len(roles) != 1 || roles[0] != "user" {
		t.Fatalf("expected roles [user], got %v", roles)
	}

	// An access token is rejected at the refresh endpoint.
	w = a.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"token": accessToken})
	if w.Code != 400 {
		t.Fatalf("access token at refresh: expected 400, got %d", w.Code)
	}

	// The access token authorizes self-updates.
	w = a.do(t, http.MethodPut, "/users/"+userID, accessToken, gin.H{"name": "Alice B", "current_password": "password1"})
	if w.Code != 204 {
		t.Fatalf("update: expected 204, got %d (%s)", w.Code, w.Body.String())
	}

	// But not updates of other accounts.
	w = a.do(t, http.MethodPut, "/users/other-id", accessToken, gin.H{"name": "x", "current_password": "password1"})
	if w.Code != 403 {
		t.Fatalf("foreign update: expected 403, got %d", w.Code)
	}

	// Wrong current password is rejected.
	w = a.do(t, http.MethodDelete, "/users/"+userID, accessToken, gin.H{"current_password": "wrong"})
	if w.Code != 401 {
		t.Fatalf("wrong password delete: expected 401, got %d", w.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "ghost", "password": "whatever1"})
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSendEmailConfirmation_UnknownEmailHasNoSideEffect(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/auth/email-send-confirmation", "", gin.H{"email": "ghost@example.com"})
	if w.Code != 204 {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(a.sender.urls) != 0 {
		t.Fatalf("expected no mail for unknown address")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/users/nope", "", nil)
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
