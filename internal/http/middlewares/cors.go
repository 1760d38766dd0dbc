package middlewares

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET,POST,PATCH,PUT,DELETE,OPTIONS"
	corsHeaders = "Authorization,Content-Type,X-Request-Id"
)

// CORSMiddleware reflects allowed origins so the jwt cookie can travel with
// credentialed requests. "*" in origins allows any origin. Preflights end
// here with 204.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	anyOrigin := slices.Contains(origins, "*")

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" && (anyOrigin || slices.Contains(origins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
