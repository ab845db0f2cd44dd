package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"tidewater/harbormaster/internal/auth"
	reqcontext "tidewater/harbormaster/internal/context"
	"tidewater/harbormaster/internal/db/repositories"

	"github.com/golang-jwt/jwt/v5"
)

type jwtTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the caller's identity from either a bearer JWT
// (web client) or an API key (ops tooling) and stores the claims on the
// request context.
func AuthMiddleware(keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	secret := []byte(os.Getenv("JWT_SECRET"))

	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				token := strings.TrimPrefix(authHeader, "Bearer ")

				parsed := &jwtTokenClaims{}
				_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
					}
					return secret, nil
				})
				if err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}

				claims = &auth.JWTClaims{
					UserUUID:  parsed.Subject,
					RoleValue: parseRole(parsed.Role),
				}

			case apiKey != "":
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

				if keyRes == nil || !keyRes.IsActive {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				claims = &auth.APIKeyClaims{
					UserUUID:  r.Header.Get("X-Operator-Id"),
					RoleValue: keyRes.Role,
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := reqcontext.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
