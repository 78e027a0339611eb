package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/services"
)

// currentUserID pulls the authenticated user id set by AuthMiddleware. It
// writes the error response itself when the id is missing or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user id"})
		return uuid.Nil, false
	}
	return uid, true
}

func requestDB(c *gin.Context) *gorm.DB {
	return c.MustGet("db").(*gorm.DB)
}

func requestStorage(c *gin.Context) services.ObjectStorage {
	return c.MustGet("storage").(services.ObjectStorage)
}

func requestScriptWriter(c *gin.Context) services.ScriptWriter {
	return c.MustGet("script_writer").(services.ScriptWriter)
}
