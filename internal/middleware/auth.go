package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"clubconnect/backend/internal/auth"
)

// AuthMiddleware verifies the bearer token issued by the identity
// provider and puts the claims into the request context.
func AuthMiddleware() func(http.Handler) http.Handler {
	secret := []byte(os.Getenv("JWT_SECRET"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized. Missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
				return
			}

			mapClaims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized. Malformed claims", http.StatusUnauthorized)
				return
			}

			sub, _ := mapClaims["sub"].(string)
			role, _ := mapClaims["role"].(string)
			if sub == "" {
				http.Error(w, "Unauthorized. Missing subject", http.StatusUnauthorized)
				return
			}

			claims := &auth.JWTClaims{Subject: sub, RoleValue: role}
			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
