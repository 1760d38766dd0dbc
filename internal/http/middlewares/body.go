package middlewares

import (
	"mime"
	"net/http"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps how much of a body handlers may read. Reading past the
// cap fails with *http.MaxBytesError, which the JSON decoder maps to 413.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// RequireJSON rejects POST, PUT and PATCH bodies that are not JSON.
// Requests without a body pass through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasBody(c.Request) && !isJSON(c.GetHeader("Content-Type")) {
			Abort(c, apperr.New(http.StatusUnsupportedMediaType, "Content-Type must be application/json"))
			return
		}
		c.Next()
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
