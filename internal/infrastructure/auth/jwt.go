package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harbinger-games/harbinger/internal/shared/biztime"
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the player identity in the registered subject claim.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// PlayerID returns the authenticated player, taken from the subject claim.
func (c *Claims) PlayerID() string {
	return c.Subject
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// JWTService signs and verifies HS256 access tokens. Token issuance for real players
// belongs to the account service; Generate exists for tooling and tests.
type JWTService struct {
	secret           []byte
	issuer           string
	accessExpMinutes int
}

func NewJWTService(secret, issuer string, accessExpMinutes int) *JWTService {
	return &JWTService{
		secret:           []byte(secret),
		issuer:           issuer,
		accessExpMinutes: accessExpMinutes,
	}
}

func (s *JWTService) Generate(playerID string) (*AccessToken, error) {
	return s.GenerateWithTTL(playerID, time.Duration(s.accessExpMinutes)*time.Minute)
}

func (s *JWTService) GenerateWithTTL(playerID string, ttl time.Duration) (*AccessToken, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player ID is required")
	}

	now := biztime.NowUTC()
	exp := now.Add(ttl)
	claims := &Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return &AccessToken{Token: token, ExpiresAt: exp}, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

func (s *JWTService) AccessExpMinutes() int {
	return s.accessExpMinutes
}
