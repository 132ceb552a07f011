package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn       func(ctx context.Context, email, password, name string) (*model.User, *model.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*model.User, *model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password, name)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password, name string) (*model.User, *model.Session, error) {
			return &model.User{ID: "user-1", Email: email, Name: name},
				&model.Session{ID: "session-abc", UserID: "user-1", ExpiresAt: time.Now().Add(24 * time.Hour)},
				nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"email":"test@example.com","password":"password123","name":"テスト"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "session-abc" {
		t.Errorf("cookie.Value = %q, want %q", cookie.Value, "session-abc")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	var got userResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Email != "test@example.com" {
		t.Errorf("got.Email = %q, want %q", got.Email, "test@example.com")
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password, name string) (*model.User, *model.Session, error) {
			return nil, nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"email":"taken@example.com","password":"password123","name":"テスト"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if got.Code != "EMAIL_TAKEN" {
		t.Errorf("got.Code = %q, want %q", got.Code, "EMAIL_TAKEN")
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_Success_SetsCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			return &model.User{ID: "user-1", Email: email, Name: "テスト"},
				&model.Session{ID: "session-xyz", UserID: "user-1", ExpiresAt: time.Now().Add(24 * time.Hour)},
				nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"email":"test@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "session-xyz" {
		t.Errorf("cookie.Value = %q, want %q", cookie.Value, "session-xyz")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"email":"test@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if got.Code != "INVALID_CREDENTIALS" {
		t.Errorf("got.Code = %q, want %q", got.Code, "INVALID_CREDENTIALS")
	}
}

func TestAuthHandler_Logout_ClearsCookieAndDeletesSession(t *testing.T) {
	logoutCalled := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			if sessionID != "session-abc" {
				t.Errorf("sessionID = %q, want %q", sessionID, "session-abc")
			}
			logoutCalled = true
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if !logoutCalled {
		t.Error("expected Logout to be called")
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie.MaxAge = %d, want -1", cookie.MaxAge)
	}
}

func TestAuthHandler_Logout_WithoutCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	// Cookieがなくても204を返す（冪等）
	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "test@example.com", Name: "テスト"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got userResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("got.ID = %q, want %q", got.ID, "user-1")
	}
}

func TestAuthHandler_Me_NoCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_ExpiredSession(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "expired-session"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
