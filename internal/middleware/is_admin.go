package middleware

import (
	"net/http"
	"strings"

	"tidewater/harbormaster/internal/api"
	"tidewater/harbormaster/internal/auth"
	"tidewater/harbormaster/internal/constants"
	reqcontext "tidewater/harbormaster/internal/context"
)

func parseRole(raw string) constants.PortRole {
	switch constants.PortRole(strings.ToLower(strings.TrimSpace(raw))) {
	case constants.RoleAdmin:
		return constants.RoleAdmin
	case constants.RoleOperations:
		return constants.RoleOperations
	default:
		return constants.RolePilot
	}
}

// IsAdminMiddleware rejects non-administrators before the handler runs, so
// a refused bulk operation can never have partial side effects.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := reqcontext.GetUserClaims(r.Context())

			if !auth.IsAdmin(claims) {
				api.RespondWithError(w, http.StatusForbidden, constants.StatusNotAdmin, constants.ReasonNotAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
