// Package auth validates the bearer credentials issued by the auth
// service. The core only sees core.TokenValidator.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

// JWT validates HMAC-signed access tokens carrying user_id and name
// claims. Malformed, expired or unknown-subject tokens all collapse
// into ErrAuthRequired for the handshake.
type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

func (v *JWT) Validate(_ context.Context, token string) (core.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %v", core.ErrAuthRequired, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return core.Identity{}, fmt.Errorf("%w: unexpected claims", core.ErrAuthRequired)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return core.Identity{}, fmt.Errorf("%w: missing user_id claim", core.ErrAuthRequired)
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = userID
	}
	return core.Identity{UserID: domain.UserID(userID), Name: name}, nil
}
