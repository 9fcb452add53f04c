// Package auth issues and checks the credentials used by agents to open game
// sessions and by spectators to watch them.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims holds the JWT payload.
type Claims struct {
	AgentID string `json:"agent_id"`
	Side    string `json:"side,omitempty"`
	jwt.RegisteredClaims
}

// Signer creates and validates HMAC-signed session tokens.
type Signer struct {
	secret []byte
	expiry time.Duration
}

// NewSigner creates a Signer with the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		expiry: 15 * time.Minute,
	}
}

// Sign creates a short-lived token for the agent playing on side.
func (s *Signer) Sign(agentID, side string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.expiry)
	claims := &Claims{
		AgentID: agentID,
		Side:    side,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   agentID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expires, err
}

// ValidateToken parses and validates a JWT string, returning the claims.
func (s *Signer) ValidateToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenSource returns an oauth2.TokenSource that signs a fresh token for
// the agent whenever the cached one is about to expire.
func (s *Signer) TokenSource(agentID, side string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &signerSource{signer: s, agentID: agentID, side: side})
}

type signerSource struct {
	signer  *Signer
	agentID string
	side    string
}

func (s *signerSource) Token() (*oauth2.Token, error) {
	tok, expires, err := s.signer.Sign(s.agentID, s.side)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer", Expiry: expires}, nil
}
