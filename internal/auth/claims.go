package auth

import "tidewater/harbormaster/internal/constants"

// Common interface for request identities regardless of how the caller
// authenticated (JWT from the web client, API key from ops tooling).
type UserClaims interface {
	UserID() string
	Role() string
	Source() string
	HasPermission(action string) bool
}

type JWTClaims struct {
	UserUUID  string
	RoleValue constants.PortRole
}

func (c *JWTClaims) UserID() string { return c.UserUUID }
func (c *JWTClaims) Role() string {
	return string(c.RoleValue)
}
func (c *JWTClaims) Source() string            { return "JWT" }
func (c *JWTClaims) HasPermission(string) bool { return true }

type APIKeyClaims struct {
	UserUUID  string
	RoleValue constants.PortRole
}

func (c *APIKeyClaims) UserID() string { return c.UserUUID }
func (c *APIKeyClaims) Role() string {
	return string(c.RoleValue)
}
func (c *APIKeyClaims) Source() string            { return "API_KEY" }
func (c *APIKeyClaims) HasPermission(string) bool { return true }

// IsAdmin reports whether the claims carry the admin role.
func IsAdmin(c UserClaims) bool {
	return c != nil && c.Role() == string(constants.RoleAdmin)
}

// ActorFor derives the audit actor for a request identity.
func ActorFor(c UserClaims) Actor {
	if c == nil {
		return SystemActor
	}
	return AuthenticatedActor(c.UserID())
}
