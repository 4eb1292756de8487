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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdmins struct {
	hashes map[string]string
	err    error
}

func (f *fakeAdmins) GetAdminByLogin(_ context.Context, login string) (int, string, error) {
	if f.err != nil {
		return 0, "", f.err
	}
	hash, ok := f.hashes[login]
	if !ok {
		return 0, "", nil
	}
	return 7, hash, nil
}

func (f *fakeAdmins) CreateAdmin(_ context.Context, login, passwordHash string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.hashes == nil {
		f.hashes = map[string]string{}
	}
	f.hashes[login] = passwordHash
	return 7, nil
}

func newEnv(t *testing.T) *Authenv {
	t.Helper()
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	return &Authenv{JWTkey: []byte("test-key"), Repo: &fakeAdmins{hashes: map[string]string{"admin": hash}}}
}

func protected(env *Authenv) http.Handler {
	return env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, _ := AdminLogin(r.Context())
		w.Write([]byte(login))
	}))
}

func TestAuthHandler_LoginAndAccess(t *testing.T) {
	env := newEnv(t)
	rec := httptest.NewRecorder()
	env.AuthHandler(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"login":" admin ","password":"s3cret!"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var body loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, cookies[0].Value, body.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/import", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	protected(env).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rec = httptest.NewRecorder()
	protected(env).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Rejects(t *testing.T) {
	env := newEnv(t)
	cases := map[string]struct {
		body string
		code int
	}{
		"bad json":       {`{`, http.StatusBadRequest},
		"empty password": {`{"login":"admin"}`, http.StatusBadRequest},
		"wrong password": {`{"login":"admin","password":"nope"}`, http.StatusUnauthorized},
		"unknown login":  {`{"login":"ghost","password":"s3cret!"}`, http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.AuthHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestAuthHandler_StoreError(t *testing.T) {
	env := &Authenv{JWTkey: []byte("k"), Repo: &fakeAdmins{err: errors.New("down")}}
	rec := httptest.NewRecorder()
	env.AuthHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"login":"a","password":"b"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	env := newEnv(t)
	other := &Authenv{JWTkey: []byte("other-key")}
	foreign, err := other.IssueToken(1, "admin", time.Now())
	require.NoError(t, err)
	expired, err := env.IssueToken(1, "admin", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	noLogin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"admin_id": 1}).SignedString(env.JWTkey)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":  "",
		"garbage":  "not.a.jwt",
		"foreign":  foreign,
		"expired":  expired,
		"no login": noLogin,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if token != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			}
			rec := httptest.NewRecorder()
			protected(env).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"), "same host, different port")
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"))
}

func TestEnsureAdmin(t *testing.T) {
	store := &fakeAdmins{}

	created, err := EnsureAdmin(context.Background(), store, " admin ", "s3cret!")
	require.NoError(t, err)
	assert.True(t, created)
	require.Contains(t, store.hashes, "admin")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.hashes["admin"]), []byte("s3cret!")))

	hash := store.hashes["admin"]
	created, err = EnsureAdmin(context.Background(), store, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, hash, store.hashes["admin"], "existing password kept")

	created, err = EnsureAdmin(context.Background(), store, "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, store.hashes, 1)
}

func TestEnsureAdmin_StoreError(t *testing.T) {
	_, err := EnsureAdmin(context.Background(), &fakeAdmins{err: errors.New("down")}, "admin", "x")
	assert.ErrorContains(t, err, "down")
}

func TestEnsureAdmin_SeededAdminCanLogIn(t *testing.T) {
	store := &fakeAdmins{}
	_, err := EnsureAdmin(context.Background(), store, "admin", "s3cret!")
	require.NoError(t, err)
	env := &Authenv{JWTkey: []byte("k"), Repo: store}

	rec := httptest.NewRecorder()
	env.AuthHandler(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"login":"admin","password":"s3cret!"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
}
