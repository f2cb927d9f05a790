package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/config"
	"github.com/user/habits-go/db/dbtest"
)

func testTokens() *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := testTokens()
	resp, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 900 {
		t.Errorf("response = %+v", resp)
	}

	claims, err := tm.Validate(resp.AccessToken, tokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if _, err := tm.Validate(resp.RefreshToken, tokenTypeRefresh); err != nil {
		t.Errorf("Validate refresh: %v", err)
	}

	if _, err := tm.Validate(resp.RefreshToken, tokenTypeAccess); !errors.Is(err, errWrongTokenType) {
		t.Errorf("refresh token as access: got %v", err)
	}
}

func TestTokenRejections(t *testing.T) {
	tm := testTokens()
	resp, err := tm.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := testTokens()
	other.secret = []byte("another-secret")
	if _, err := other.Validate(resp.AccessToken, tokenTypeAccess); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Errorf("wrong secret: got %v", err)
	}

	later := testTokens()
	later.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := later.Validate(resp.AccessToken, tokenTypeAccess); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired: got %v", err)
	}

	if _, err := tm.Validate("not-a-jwt", tokenTypeAccess); err == nil {
		t.Error("Expected garbage token to fail")
	}
}

func TestJWTMiddleware(t *testing.T) {
	tm := testTokens()
	resp, err := tm.Issue(5)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var seen int64
	h := JWTMiddleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + resp.AccessToken, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + resp.AccessToken, http.StatusUnauthorized},
		{"refresh token", "Bearer " + resp.RefreshToken, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && seen != 5 {
				t.Errorf("user id in context = %d, want 5", seen)
			}
			if tt.want == http.StatusUnauthorized {
				if w.Header().Get("WWW-Authenticate") == "" {
					t.Error("Expected a WWW-Authenticate challenge on 401")
				}
				var body apperror.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Success || body.Error == "" {
					t.Errorf("body = %s", w.Body.String())
				}
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("Expected no user in empty context")
	}
	if id, ok := UserIDFromContext(WithUserID(context.Background(), 3)); !ok || id != 3 {
		t.Errorf("UserIDFromContext = (%d, %v), want (3, true)", id, ok)
	}
}

func TestRegisterLoginRefresh(t *testing.T) {
	database := dbtest.New(t)
	svc := NewAuthService(database.DB, testTokens())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "ana", Email: " Ana@Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 || user.Email != "ana@example.com" {
		t.Errorf("user = %+v", user)
	}

	for _, login := range []string{"ana", "ANA@example.com"} {
		tokens, err := svc.Login(ctx, LoginRequest{Login: login, Password: "correct-horse"})
		if err != nil {
			t.Fatalf("Login(%q): %v", login, err)
		}
		refreshed, err := svc.RefreshToken(ctx, tokens.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshToken: %v", err)
		}
		if refreshed.AccessToken == "" {
			t.Error("Expected a new access token")
		}
		if _, err := svc.RefreshToken(ctx, tokens.AccessToken); !apperror.IsAuthError(err) {
			t.Errorf("refresh with access token: got %v", err)
		}
	}

	if _, err := svc.Login(ctx, LoginRequest{Login: "ana", Password: "wrong-password"}); !apperror.IsAuthError(err) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Login: "nobody", Password: "whatever1"}); !apperror.IsAuthError(err) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestRegisterErrors(t *testing.T) {
	database := dbtest.New(t)
	svc := NewAuthService(database.DB, testTokens())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		req   RegisterRequest
		check func(error) bool
	}{
		{"duplicate username", RegisterRequest{Username: "ana", Email: "other@example.com", Password: "password1"}, apperror.IsConflictError},
		{"duplicate email", RegisterRequest{Username: "ana2", Email: "ANA@example.com", Password: "password1"}, apperror.IsConflictError},
		{"short password", RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"}, apperror.IsValidationError},
		{"bad email", RegisterRequest{Username: "bob", Email: "not-an-email", Password: "password1"}, apperror.IsValidationError},
		{"bad username", RegisterRequest{Username: "b b", Email: "bob@example.com", Password: "password1"}, apperror.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if !tt.check(err) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestAuthHandlers(t *testing.T) {
	database := dbtest.New(t)
	h := NewHandlers(NewAuthService(database.DB, testTokens()))

	post := func(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	w := post(h.HandleRegister(), `{"username":"ana","email":"ana@example.com","password":"password1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("register response leaks password fields: %s", w.Body.String())
	}

	w = post(h.HandleLogin(), `{"login":"ana","password":"password1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var env struct {
		Data TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	w = post(h.HandleRefreshToken(), `{"refresh_token":"`+env.Data.RefreshToken+`"}`)
	if w.Code != http.StatusOK {
		t.Errorf("refresh: %d %s", w.Code, w.Body.String())
	}

	if w = post(h.HandleLogin(), `{"login":"ana","password":"nope-nope"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: %d", w.Code)
	}
	if w = post(h.HandleRefreshToken(), `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty refresh: %d", w.Code)
	}
	if w = post(h.HandleRegister(), `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("bad register body: %d", w.Code)
	}
}
