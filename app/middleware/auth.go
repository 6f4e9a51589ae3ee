package appMiddleware

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-trip-planner/config"
)

// Typed context keys to avoid collisions with other packages.
type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// Claims are the custom claims carried in access tokens.
type Claims struct {
	UserID               string `json:"uid"`
	Email                string `json:"eml,omitempty"`
	Role                 string `json:"rol,omitempty"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, Issuer, Audience, ...
}

// parseAccessToken validates the signature and standard claims of a bearer token.
func parseAccessToken(tokenString string, cfg config.JWTConfig) (*Claims, error) {
	secretKey := []byte(cfg.SecretKey)
	claims := &Claims{}
	parseOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, parseOpts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token rejected")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token missing uid claim")
	}
	return claims, nil
}

// GetUserIDFromContext returns the user ID set by Authenticate or
// OptionalAuthenticate, and false when the request is anonymous.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
