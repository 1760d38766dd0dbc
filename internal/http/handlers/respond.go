package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// success envelope: {"status":"success","data":{"data":...}}
func respondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{
		"status": "success",
		"data":   gin.H{"data": data},
	})
}

func listBody(results int, data any) gin.H {
	return gin.H{
		"status":  "success",
		"results": results,
		"data":    gin.H{"data": data},
	}
}

func respondNoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}
