package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/services"
)

// DBMiddleware injects the database handle for handlers to pick up with
// c.MustGet("db").
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

// DepsMiddleware injects the external collaborators the handlers and their
// background jobs depend on.
func DepsMiddleware(storage services.ObjectStorage, writer services.ScriptWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("storage", storage)
		c.Set("script_writer", writer)
		c.Next()
	}
}
