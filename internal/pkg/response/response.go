package response

import "github.com/gin-gonic/gin"

// All endpoints answer with the same envelope:
// {"success": true, "data": ...} or
// {"success": false, "error": {"code": ..., "message": ...}}.

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
