package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// bearerPrefixLen is the length of "Bearer " stripped from the Authorization
// header. The prefix itself is not checked; a wrong prefix corrupts the token
// and verification fails on parse.
const bearerPrefixLen = len("Bearer ")

var (
	// ErrMissingToken is returned when no Authorization header was sent
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken matches every verification failure via errors.Is
	ErrInvalidToken = errors.New("invalid token")
)

// InvalidTokenError carries the signing library's verification message
type InvalidTokenError struct {
	Err error
}

func (e *InvalidTokenError) Error() string {
	return e.Err.Error()
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Err
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Claims is the signed token payload
type Claims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies session tokens
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with secret.
// An expiry of zero issues tokens without an exp claim.
func NewTokenService(secret []byte, expiry time.Duration) *TokenService {
	return &TokenService{
		secret: secret,
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the configured token lifetime, zero meaning none
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a token for identity
func (s *TokenService) Issue(identity Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:  identity.ID,
		Email:   identity.Email,
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes the identity from a raw Authorization header value
func (s *TokenService) Verify(header string) (*Identity, error) {
	if header == "" {
		return nil, ErrMissingToken
	}

	raw := ""
	if len(header) > bearerPrefixLen {
		raw = header[bearerPrefixLen:]
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &InvalidTokenError{Err: err}
	}
	if !token.Valid {
		return nil, &InvalidTokenError{Err: jwt.ErrTokenSignatureInvalid}
	}
	if claims.UserID == "" {
		return nil, &InvalidTokenError{Err: errors.New("token payload is missing id")}
	}

	return &Identity{
		ID:      claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}
