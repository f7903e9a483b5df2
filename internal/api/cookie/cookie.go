// Package cookie carries the opaque session id to the browser.
//
// The cookie value is an HS256 JWT whose only payload is the session id (jti)
// and an expiry. Identity and role never leave the server; the signature only
// stops clients from probing arbitrary session ids.
package cookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// DefaultName is the cookie name used when none is configured.
const DefaultName = "sid"

var ErrInvalid = errors.New("invalid session cookie")

// Options configures a Codec.
type Options struct {
	Name   string
	Secret string
	TTL    time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Codec signs, writes, reads and clears the session cookie.
type Codec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewCodec(opts Options) *Codec {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Codec{
		name:   name,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		now:    time.Now,
	}
}

// Name returns the cookie name.
func (c *Codec) Name() string {
	return c.name
}

// Encode signs sessionID into a token that expires with the session.
func (c *Codec) Encode(sessionID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies token and returns the session id it carries.
func (c *Codec) Decode(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid || claims.ID == "" {
		return "", ErrInvalid
	}
	return claims.ID, nil
}

// Write sets the session cookie for sessionID on the response.
func (c *Codec) Write(ctx echo.Context, sessionID string) error {
	token, err := c.Encode(sessionID)
	if err != nil {
		return err
	}
	ctx.SetCookie(c.cookie(token, int(c.ttl.Seconds())))
	return nil
}

// Read returns the session id from the request cookie, or "" when the
// cookie is missing, expired or tampered with.
func (c *Codec) Read(ctx echo.Context) string {
	ck, err := ctx.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return ""
	}
	sid, err := c.Decode(ck.Value)
	if err != nil {
		return ""
	}
	return sid
}

// Clear expires the cookie in the browser.
func (c *Codec) Clear(ctx echo.Context) {
	ctx.SetCookie(c.cookie("", -1))
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
