package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	adminIDKey    contextKey = "adminID"
	adminLoginKey contextKey = "adminLogin"

	CookieName = "session_token"
	tokenTTL   = 24 * time.Hour
)

// AdminStore resolves an admin login to its id and bcrypt hash.
// An unknown login yields id 0 and an empty hash.
type AdminStore interface {
	GetAdminByLogin(ctx context.Context, login string) (int, string, error)
}

// AdminBootstrapper can also insert an admin; it seeds the first account.
type AdminBootstrapper interface {
	AdminStore
	CreateAdmin(ctx context.Context, login, passwordHash string) (int, error)
}

type Authenv struct {
	JWTkey []byte
	Repo   AdminStore
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type Loginrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// LimitMiddleware keys the limiter on the client host, without the port.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !i.getLimiter(ip).Allow() {
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// EnsureAdmin creates the admin account when login is set and not yet stored.
// An existing account keeps its password. Reports whether a row was inserted.
func EnsureAdmin(ctx context.Context, store AdminBootstrapper, login, password string) (bool, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return false, nil
	}
	id, _, err := store.GetAdminByLogin(ctx, login)
	if err != nil {
		return false, fmt.Errorf("lookup admin %s: %w", login, err)
	}
	if id != 0 {
		return false, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := store.CreateAdmin(ctx, login, hash); err != nil {
		return false, fmt.Errorf("create admin %s: %w", login, err)
	}
	return true, nil
}

func (env *Authenv) IssueToken(adminID int, login string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": adminID,
		"login":    login,
		"exp":      now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(env.JWTkey)
}

func (env *Authenv) parseToken(tokenString string) (int, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	})
	if err != nil {
		return 0, "", err
	}
	if !token.Valid {
		return 0, "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("unexpected claims")
	}
	idValue, ok := claims["admin_id"].(float64)
	if !ok {
		return 0, "", errors.New("admin_id claim missing")
	}
	login, ok := claims["login"].(string)
	if !ok || login == "" {
		return 0, "", errors.New("login claim missing")
	}
	return int(idValue), login, nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware admits requests carrying a valid admin token, either as the
// session cookie or a Bearer header.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		id, login, err := env.parseToken(raw)
		if err != nil {
			log.Println("auth: token rejected:", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, id)
		ctx = context.WithValue(ctx, adminLoginKey, login)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminLogin returns the login stored by AuthMiddleware.
func AdminLogin(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(adminLoginKey).(string)
	return login, ok
}

func (env *Authenv) addCookie(w http.ResponseWriter, token string, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  now.Add(tokenTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   env.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// InitDB opens and pings Postgres. Connection strings without sslmode get
// sslmode=require.
func InitDB(connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

type loginResponse struct {
	Token string `json:"token"`
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	var req Loginrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}

	id, storedHash, err := env.Repo.GetAdminByLogin(r.Context(), req.Login)
	if err != nil {
		log.Printf("GetAdminByLogin Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if storedHash == "" || bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil {
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	token, err := env.IssueToken(id, req.Login, now)
	if err != nil {
		log.Println("auth: sign token:", err)
		http.Error(w, "Token error", http.StatusInternalServerError)
		return
	}
	env.addCookie(w, token, now)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{Token: token})
}
