package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Authentication itself lives in a separate service; what arrives here is
// its output, a signed access token naming an actor and their roles. Manager
// only verifies and unpacks it.

const accessTokenType = "access"

var signingMethod = jwt.SigningMethodHS256

type Manager struct {
	secretKey string
}

func NewManager(secretKey string) *Manager {
	return &Manager{secretKey: secretKey}
}

type ActorClaims struct {
	TokenType string    `json:"token_type"`
	ActorID   uuid.UUID `json:"actor_id"`
	Roles     []string  `json:"roles"`
	jwt.RegisteredClaims
}

func (m *Manager) ParseActor(tokenStr string) (uuid.UUID, []string, error) {
	claims := &ActorClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to parse actor token: %w", err)
	}
	if claims.TokenType != accessTokenType {
		return uuid.Nil, nil, fmt.Errorf("wrong token type: expected %q, got %q", accessTokenType, claims.TokenType)
	}
	return claims.ActorID, claims.Roles, nil
}
