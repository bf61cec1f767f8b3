package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Session is the per-request authentication state.
type Session struct {
	Authenticated bool
	User          string
}

// Anonymous is the state of a request without a valid session cookie.
var Anonymous = Session{}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return Anonymous
}

// SessionCodec signs sessions into cookies and reads them back.
type SessionCodec struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewSessionCodec creates a codec signing with HS256.
func NewSessionCodec(secret string, ttl time.Duration, cookieName string, secure bool) (*SessionCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &SessionCodec{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
		now:        time.Now,
	}, nil
}

// Encode signs a token for user.
func (c *SessionCodec) Encode(user string) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		ID:        ulid.Make().String(),
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Decode validates token and returns the session it carries.
func (c *SessionCodec) Decode(token string) (Session, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Anonymous, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return Anonymous, errors.New("invalid session token")
	}
	return Session{Authenticated: true, User: claims.Subject}, nil
}

// SetCookie writes a fresh session cookie for user.
func (c *SessionCodec) SetCookie(w http.ResponseWriter, user string) error {
	token, expires, err := c.Encode(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie removes the session cookie.
func (c *SessionCodec) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest reads the session cookie of r. Missing or invalid cookies yield Anonymous.
func (c *SessionCodec) FromRequest(r *http.Request) Session {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous
	}
	s, err := c.Decode(cookie.Value)
	if err != nil {
		return Anonymous
	}
	return s
}
