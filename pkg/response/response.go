package response

import "github.com/gin-gonic/gin"

// Error writes a uniform error body.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// OK writes a 200 with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(200, payload)
}
