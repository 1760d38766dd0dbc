package middlewares

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error. It must
// be registered before Recovery so recovered panics are rendered too.
//
// Outside development errors are translated to client-safe messages and
// anything non-operational becomes a generic 500. In development the error
// is rendered as is, with its stack.
func ErrorHandler(log *slog.Logger, development bool) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		if development {
			renderDevelopment(c, log, err)
			return
		}

		appErr := apperr.Translate(err)
		if !appErr.Operational {
			log.ErrorContext(c.Request.Context(), "unhandled error",
				"err", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": apperr.GenericMessage,
			})
			return
		}

		c.JSON(appErr.Status, gin.H{
			"status":  appErr.StatusText(),
			"message": appErr.Message,
		})
	}
}

func renderDevelopment(c *gin.Context, log *slog.Logger, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}

	if !appErr.Operational {
		log.ErrorContext(c.Request.Context(), "unhandled error", "err", err.Error())
	}

	c.JSON(appErr.Status, gin.H{
		"status": appErr.StatusText(),
		"error": gin.H{
			"statusCode":    appErr.Status,
			"status":        appErr.StatusText(),
			"isOperational": appErr.Operational,
			"detail":        fmt.Sprintf("%v", err),
		},
		"message": appErr.Error(),
		"stack":   appErr.Stack(),
	})
}

// Recovery turns a panic into a non-operational error for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		_ = c.Error(apperr.Internal(fmt.Errorf("panic: %v", rec)))
		c.Abort()
	})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperr.NotFound(fmt.Sprintf("Can't find %s on this server!", c.Request.URL.Path)))
		c.Abort()
	}
}

// Abort pushes err for ErrorHandler and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
