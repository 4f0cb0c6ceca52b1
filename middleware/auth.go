package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const callerContextKey contextKey = "caller"

// jwtClaimUUID names the claim carrying the caller's participant uuid,
// issued by the auth collaborator.
const jwtClaimUUID = "uuid"

// Authenticate verifies the bearer token and injects the caller identity
// into the request context. Every handler that needs to know who is
// calling reads it through CallerID instead of re-parsing the token.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID, err := callerFromRequest(r, secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerContextKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFromRequest(r *http.Request, secret []byte) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("missing bearer token")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	callerID, ok := claims[jwtClaimUUID].(string)
	if !ok || callerID == "" {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUUID)
	}
	return callerID, nil
}

// CallerID returns the authenticated caller's participant uuid.
func CallerID(ctx context.Context) (string, bool) {
	callerID, ok := ctx.Value(callerContextKey).(string)
	return callerID, ok && callerID != ""
}
