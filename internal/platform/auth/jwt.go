package auth

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"recruitr/internal/platform/config"
)

var (
	// ErrNoSigningKey means the service was constructed without usable RSA
	// key material. Fatal at startup, never a per-request condition.
	ErrNoSigningKey = errors.New("auth: signing key not configured")

	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims is the session credential payload: registered iat/exp/sub plus the
// tenant context resolved at login.
type Claims struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

// TokenService issues and verifies RS256 session credentials. Signing uses
// the private key; verification only needs the public key, so issuing and
// verifying can later live in separate services.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
}

func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.PrivateKeyPEM == "" || cfg.PublicKeyPEM == "" {
		return nil, ErrNoSigningKey
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
	if err != nil {
		return nil, errors.Join(ErrNoSigningKey, err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
	if err != nil {
		return nil, errors.Join(ErrNoSigningKey, err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		ttl:        cfg.TTL,
	}, nil
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(userID, orgID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		OrgID: orgID,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrTokenInvalid
		}
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	// exp is enforced above; iat and sub are required by contract.
	if claims.IssuedAt == nil || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
