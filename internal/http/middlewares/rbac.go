package middlewares

import (
	"slices"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RestrictTo runs after Protect and admits only the given roles.
func RestrictTo(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Abort(c, apperr.Unauthorized("User not authenticated"))
			return
		}

		if !slices.Contains(roles, u.Role) {
			Abort(c, apperr.Forbidden("You do not have permission to perform this action"))
			return
		}

		c.Next()
	}
}
