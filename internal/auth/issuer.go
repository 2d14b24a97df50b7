// Package auth issues and verifies the signed bearer credentials used by the
// api and stored in the session store by the bot.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned for a well-formed, correctly signed token whose
	// exp claim has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers everything else: bad signature, unexpected
	// algorithm, wrong token type, malformed subject.
	ErrInvalid = errors.New("token invalid")
)

// TokenType distinguishes access from refresh tokens in the typ claim.
type TokenType string

const (
	Access  TokenType = "access"
	Refresh TokenType = "refresh"
)

// Token is a signed JWT along with its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// Pair is what a successful login returns.
type Pair struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

type claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 tokens with a shared secret. Verification
// is stateless: no store lookup and no revocation list.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Issue returns a fresh access/refresh pair for userID.
func (i *Issuer) Issue(userID uint64) (Pair, error) {
	access, err := i.sign(userID, Access, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, Refresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Verify validates an access token and returns its user id.
func (i *Issuer) Verify(token string) (uint64, error) {
	return i.verify(token, Access)
}

// VerifyRefresh validates a refresh token and returns its user id.
func (i *Issuer) VerifyRefresh(token string) (uint64, error) {
	return i.verify(token, Refresh)
}

// Refresh exchanges a valid refresh token for a new access token. Earlier
// access tokens stay valid until they expire.
func (i *Issuer) Refresh(refresh string) (Token, error) {
	uid, err := i.VerifyRefresh(refresh)
	if err != nil {
		return Token{}, err
	}
	return i.sign(uid, Access, i.accessTTL)
}

func (i *Issuer) sign(userID uint64, typ TokenType, ttl time.Duration) (Token, error) {
	now := i.now().UTC()
	exp := now.Add(ttl)
	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

func (i *Issuer) verify(raw string, want TokenType) (uint64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Type != want {
		return 0, fmt.Errorf("%w: expected %s token, got %q", ErrInvalid, want, c.Type)
	}
	uid, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || uid == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalid, c.Subject)
	}
	return uid, nil
}
