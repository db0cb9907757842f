package auth

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"schemasync/internal/apierr"
)

const callerKey = "caller"

// Caller is the token holder behind a request.
type Caller struct {
	Subject string
	Roles   []string
}

func (c *Caller) HasRole(role string) bool {
	return c != nil && slices.Contains(c.Roles, role)
}

// Bearer accepts "Authorization: Bearer <jwt>" signed with secret and stores
// the resulting Caller on the request.
func Bearer(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		switch {
		case scheme == "":
			return apierr.Unauthorized("Missing auth token")
		case !found || !strings.EqualFold(scheme, "Bearer"):
			return apierr.Unauthorized("Invalid auth header format")
		}

		claims, err := ParseAccessToken(strings.TrimSpace(token), secret)
		if err != nil {
			return apierr.Unauthorized("Invalid or expired token")
		}
		c.Locals(callerKey, &Caller{Subject: claims.Subject, Roles: claims.Roles})
		return c.Next()
	}
}

// RequireRole lets the request through only when Bearer accepted a caller
// holding role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := CallerFrom(c)
		if caller == nil {
			return apierr.Unauthorized("Missing auth token")
		}
		if !caller.HasRole(role) {
			return apierr.Forbidden(role + " role required")
		}
		return c.Next()
	}
}

// CallerFrom returns the authenticated caller, or nil on unguarded routes.
func CallerFrom(c *fiber.Ctx) *Caller {
	caller, _ := c.Locals(callerKey).(*Caller)
	return caller
}
