package nonce

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ACTION_EVENT_FILTER = "event_filter"
	ACTION_EVENT_SAVE   = "event_save"
	ACTION_EVENT_DELETE = "event_delete"
)

var ErrInvalid = errors.New("invalid anti-forgery token")

// Verifier checks that a token was issued by us for the given action and has
// not expired yet.
type Verifier interface {
	Verify(token string, action string) error
}

type Claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Issuer signs and checks short lived, action bound tokens with HMAC-SHA512.
type Issuer struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, expire time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		expire: expire,
		now:    time.Now,
	}
}

func (i *Issuer) Issue(action string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expire)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("(*Issuer).Issue: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(token string, action string) error {
	if token == "" {
		return fmt.Errorf("%w: token is blank", ErrInvalid)
	}
	claims := new(Claims)
	if _, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.Action != action {
		return fmt.Errorf("%w: token is for %q, not %q", ErrInvalid, claims.Action, action)
	}
	return nil
}
