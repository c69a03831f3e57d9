package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	TokenDuration = 24 * time.Hour
	CookieName    = "auth_token"
)

var (
	// ErrNoCredentials means the authenticator found nothing it understands
	// and the next one may try.
	ErrNoCredentials      = errors.New("no credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Method string

const (
	MethodDemo   Method = "demo"
	MethodCookie Method = "cookie"
	MethodBearer Method = "bearer"
	MethodAPIKey Method = "api_key"
)

// Credentials are the raw header values a caller may authenticate with.
type Credentials struct {
	Cookie        string
	Authorization string
	APIKey        string
}

func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		Cookie:        r.Header.Get("Cookie"),
		Authorization: r.Header.Get("Authorization"),
		APIKey:        r.Header.Get("X-API-KEY"),
	}
}

func (c Credentials) bearer() string {
	token, ok := strings.CutPrefix(c.Authorization, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (c Credentials) sessionCookie() string {
	if c.Cookie == "" {
		return ""
	}
	cookies, err := http.ParseCookie(c.Cookie)
	if err != nil {
		return ""
	}
	for _, ck := range cookies {
		if ck.Name == CookieName {
			return ck.Value
		}
	}
	return ""
}

type Principal struct {
	UserID uint
	Method Method
	// ExpiresAt is set for JWT sessions.
	ExpiresAt time.Time
}

type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)
}

// Chain asks each authenticator in turn until one recognises the credentials.
type Chain []Authenticator

func (c Chain) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	for _, a := range c {
		p, err := a.Authenticate(ctx, creds)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return p, err
	}
	return Principal{}, ErrNoCredentials
}

// DemoToken accepts a single configured bearer token and maps it to the demo
// user. An empty token disables it.
type DemoToken struct {
	token    string
	db       *gorm.DB
	username string
}

func NewDemoToken(token string, db *gorm.DB, username string) *DemoToken {
	return &DemoToken{token: token, db: db, username: username}
}

func (d *DemoToken) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	got := creds.bearer()
	if d.token == "" || got == "" {
		return Principal{}, ErrNoCredentials
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(d.token)) != 1 {
		// Might still be a JWT bearer.
		return Principal{}, ErrNoCredentials
	}

	user, err := d.DemoUser(ctx)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: user.ID, Method: MethodDemo}, nil
}

// DemoUser returns the demo account, creating it on first use.
func (d *DemoToken) DemoUser(ctx context.Context) (models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Where("demo = ? AND discord_id IS NULL", true).
		Attrs(models.User{Username: d.username, Email: d.username + "@demo.invalid", Demo: true}).
		FirstOrCreate(&user).Error
	if err != nil {
		return models.User{}, fmt.Errorf("load demo user: %w", err)
	}
	return user, nil
}

// VerifiedSession authenticates real users by API key, session cookie or
// bearer JWT, in that order.
type VerifiedSession struct {
	secret []byte
	db     *gorm.DB
	now    func() time.Time
}

func NewVerifiedSession(secret string, db *gorm.DB) *VerifiedSession {
	return &VerifiedSession{secret: []byte(secret), db: db, now: time.Now}
}

func (s *VerifiedSession) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	if creds.APIKey != "" {
		return s.authenticateAPIKey(ctx, creds.APIKey)
	}
	if token := creds.sessionCookie(); token != "" {
		return s.authenticateJWT(token, MethodCookie)
	}
	if token := creds.bearer(); token != "" {
		return s.authenticateJWT(token, MethodBearer)
	}
	return Principal{}, ErrNoCredentials
}

func (s *VerifiedSession) authenticateAPIKey(ctx context.Context, key string) (Principal, error) {
	if s.db == nil {
		return Principal{}, ErrNoCredentials
	}
	db := s.db.WithContext(ctx)

	var keyModel models.APIKey
	if err := db.Where("key = ?", key).First(&keyModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, fmt.Errorf("%w: unknown API key", ErrInvalidCredentials)
		}
		return Principal{}, fmt.Errorf("lookup API key: %w", err)
	}

	now := s.now()
	if keyModel.Expired(now) {
		return Principal{}, fmt.Errorf("%w: API key expired", ErrInvalidCredentials)
	}

	if err := db.Model(&keyModel).Update("last_used_at", now).Error; err != nil {
		return Principal{}, fmt.Errorf("touch API key: %w", err)
	}
	return Principal{UserID: keyModel.UserID, Method: MethodAPIKey}, nil
}

func (s *VerifiedSession) authenticateJWT(tokenString string, method Method) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("%w: invalid token", ErrInvalidCredentials)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fmt.Errorf("%w: invalid token claims", ErrInvalidCredentials)
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat < 1 {
		return Principal{}, fmt.Errorf("%w: invalid token claims", ErrInvalidCredentials)
	}

	p := Principal{UserID: uint(userIDFloat), Method: method}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.ExpiresAt = exp.Time
	}
	return p, nil
}

// GenerateToken signs a session token for userID.
func (s *VerifiedSession) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
